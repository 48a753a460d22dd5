package node

import (
	"github.com/sirupsen/logrus"

	"github.com/tcfw/starchain/pkg/storage"
)

type NodeOption func(*Node) error

func WithStore(s storage.Store) NodeOption {
	return func(n *Node) error {
		n.store = s
		return nil
	}
}

func WithLogger(l *logrus.Logger) NodeOption {
	return func(n *Node) error {
		n.logger = l
		return nil
	}
}

func WithListenAddr(addr string) NodeOption {
	return func(n *Node) error {
		n.apiAddr = addr
		return nil
	}
}

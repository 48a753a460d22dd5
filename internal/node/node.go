package node

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tcfw/starchain/internal/api"
	"github.com/tcfw/starchain/internal/config"
	"github.com/tcfw/starchain/pkg/admission"
	"github.com/tcfw/starchain/pkg/ledger"
	"github.com/tcfw/starchain/pkg/storage"
)

// Node wires the single store handle, the ledger, the admission pool
// and the REST API together. The store is opened exactly once here and
// injected; pebble holds an exclusive lock on the data directory, so no
// other open may exist.
type Node struct {
	store   storage.Store
	ledger  *ledger.Ledger
	pool    *admission.Pool
	api     *api.API
	apiAddr string

	logger *logrus.Logger
}

func NewNode(ctx context.Context, opts ...NodeOption) (*Node, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}

	n := &Node{
		logger:  logrus.StandardLogger(),
		apiAddr: cfg.APIAddr(),
	}

	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, err
		}
	}

	if n.store == nil {
		s, err := storage.Open(cfg.DataDir())
		if err != nil {
			return nil, errors.Wrap(err, "opening store")
		}
		n.store = s
	}

	log := logrus.NewEntry(n.logger)

	n.ledger = ledger.New(n.store, ledger.WithLogger(log))
	if err := n.ledger.Initialize(ctx); err != nil {
		return nil, errors.Wrap(err, "initializing ledger")
	}

	n.pool = admission.New(admission.WithLogger(log))
	n.api = api.NewAPI(n.ledger, n.pool, log)

	return n, nil
}

func (n *Node) Ledger() *ledger.Ledger {
	return n.ledger
}

func (n *Node) Pool() *admission.Pool {
	return n.pool
}

func (n *Node) ListenAndServe() error {
	n.logger.WithField("addr", n.apiAddr).Info("starting REST API")

	return n.api.ListenAndServe(n.apiAddr)
}

func (n *Node) Stop() error {
	if err := n.api.Shutdown(context.Background()); err != nil {
		return errors.Wrap(err, "shutting down api")
	}

	return n.store.Close()
}

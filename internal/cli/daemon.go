package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tcfw/starchain/internal/node"
)

var (
	daemonCmd = &cobra.Command{
		Use:   "daemon",
		RunE:  runDaemon,
		Short: "run the star registry daemon",
	}
)

func init() {
	daemonCmd.Flags().StringP("api-addr", "a", ":8000", "REST API listen address")
	viper.BindPFlag("api_addr", daemonCmd.Flags().Lookup("api-addr"))

	daemonCmd.Flags().StringP("data-dir", "d", "./data", "block store directory")
	viper.BindPFlag("data_dir", daemonCmd.Flags().Lookup("data-dir"))
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n, err := node.NewNode(ctx)
	if err != nil {
		return errors.Wrap(err, "initing node")
	}

	errCh := make(chan error)

	go func() {
		if err := n.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-waitExit(ctx):
		return n.Stop()
	}
}

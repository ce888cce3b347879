package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/botirk38/podcastsim/server"
	"github.com/botirk38/podcastsim/types"
)

func newServeCommand(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve neighbor queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.config.Serve.Addr = addr
			}
			return c.serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to the configured one)")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	e, err := c.engine(true)
	if err != nil {
		return err
	}
	defer e.Close()

	// Serving without a snapshot is allowed; POST /v1/snapshot builds one.
	if _, err := e.LoadLatest(ctx); err != nil {
		if !errors.Is(err, types.ErrNoSnapshot) {
			return err
		}
		c.logger.Warn("No stored snapshot, serving until one is built")
	}

	return server.New(e, c.logger).ListenAndServe(ctx, c.config.Serve.Addr)
}

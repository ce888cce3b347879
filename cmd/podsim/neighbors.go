package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"

	"github.com/botirk38/podcastsim/neighbors"
)

func newNeighborsCommand(c *cli) *cobra.Command {
	var (
		k       int
		asJSON  bool
		version string
	)

	cmd := &cobra.Command{
		Use:   "neighbors ID",
		Short: "List the podcasts closest to ID in the stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.neighbors(cmd.Context(), args[0], k, digest.Digest(version), asJSON, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&k, "k", "k", neighbors.DefaultK, "number of neighbors")
	flags.BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	flags.StringVar(&version, "version", "", "snapshot version (defaults to the latest)")
	return cmd
}

func (c *cli) neighbors(ctx context.Context, id string, k int, version digest.Digest, asJSON bool, out io.Writer) error {
	e, err := c.engine(false)
	if err != nil {
		return err
	}
	defer e.Close()

	if version == "" {
		_, err = e.LoadLatest(ctx)
	} else {
		if err := version.Validate(); err != nil {
			return fmt.Errorf("invalid snapshot version %q: %w", version, err)
		}
		_, err = e.Load(ctx, version)
	}
	if err != nil {
		return err
	}

	result, err := e.Neighbors(ctx, id, k)
	if err != nil {
		return err
	}
	return writeNeighbors(out, result, asJSON)
}

func writeNeighbors(out io.Writer, result []neighbors.Neighbor, asJSON bool) error {
	if asJSON {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDISTANCE\tNTFS\tJTS\tWTDS")
	for _, n := range result {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", n.ID, n.Distance, n.NTFS, n.JTS, n.WTDS)
	}
	return w.Flush()
}

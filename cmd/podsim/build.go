package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/botirk38/podcastsim/options"
	"github.com/botirk38/podcastsim/providers/csvdir"
	"github.com/botirk38/podcastsim/types"
)

func newBuildCommand(c *cli) *cobra.Command {
	var tokens, idsFile string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compute and store a similarity snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("tokens") {
				c.config.Source.Type = string(types.ProviderCSVDir)
				c.config.Source.Dir = tokens
			}
			if flags.Changed("workers") {
				c.config.Build.Workers, _ = flags.GetInt("workers")
			}
			return c.build(cmd.Context(), idsFile, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&tokens, "tokens", "", "token CSV directory (defaults to the configured source)")
	flags.StringVar(&idsFile, "ids", "", "file with one podcast id per line (defaults to every podcast in the token directory)")
	flags.Int("workers", 0, "similarity workers (0 uses all CPUs)")
	return cmd
}

func (c *cli) build(ctx context.Context, idsFile string, stdout, progress io.Writer) error {
	ids, err := c.corpusIDs(idsFile)
	if err != nil {
		return err
	}

	p := mpb.NewWithContext(ctx, mpb.WithOutput(progress), mpb.WithWidth(80))
	bar := p.AddBar(0,
		mpb.PrependDecorators(decor.Name("similarity ")),
		mpb.AppendDecorators(decor.CountersNoUnit("%d / %d"), decor.Name(" "), decor.Percentage()),
	)
	var sizeOnce sync.Once

	e, err := c.engine(true,
		options.WithWorkers(c.config.Build.Workers),
		options.WithProgress(func(done, total int) {
			sizeOnce.Do(func() { bar.SetTotal(int64(total), false) })
			bar.Increment()
		}),
	)
	if err != nil {
		bar.Abort(false)
		p.Wait()
		return err
	}
	defer e.Close()

	s, err := e.Build(ctx, ids)
	if err != nil {
		bar.Abort(false)
		p.Wait()
		return err
	}
	bar.SetTotal(-1, true)
	p.Wait()

	_, err = fmt.Fprintf(stdout, "%s\t%d podcasts\t%d tokens\n", s.Version, s.Len(), len(s.Vocabulary))
	return err
}

// corpusIDs reads ids from idsFile, or lists the token directory when no
// file is given. Blank lines and lines starting with # are ignored.
func (c *cli) corpusIDs(idsFile string) ([]string, error) {
	if idsFile == "" {
		if types.ProviderType(c.config.Source.Type) != types.ProviderCSVDir {
			return nil, fmt.Errorf("--ids is required for source type %q", c.config.Source.Type)
		}
		dir, err := csvdir.NewCSVDirProvider(c.config.Source.Dir)
		if err != nil {
			return nil, err
		}
		return dir.IDs()
	}

	f, err := os.Open(idsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readIDs(f)
}

func readIDs(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, scanner.Err()
}

package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"

	"github.com/botirk38/podcastsim/providers/csvdir"
	"github.com/botirk38/podcastsim/tokenizer"
	"github.com/botirk38/podcastsim/types"
)

const (
	idColumn          = "podcast_id"
	descriptionColumn = "description"
)

// episode is one row of the episodes file
type episode struct {
	podcastID   string
	description string
}

func newTokenizeCommand(c *cli) *cobra.Command {
	var input, out string

	cmd := &cobra.Command{
		Use:   "tokenize",
		Short: "Aggregate description tokens per podcast into a CSV directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("out") {
				c.config.Source.Dir = out
			}
			if flags.Changed("workers") {
				c.config.Tokenize.Workers, _ = flags.GetInt("workers")
			}
			if flags.Changed("stem") {
				c.config.Tokenize.Stem, _ = flags.GetBool("stem")
			}
			if flags.Changed("bpe") {
				c.config.Tokenize.BPE, _ = flags.GetBool("bpe")
			}
			return c.tokenize(cmd.Context(), input, cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&input, "input", "episodes.csv", "episodes CSV with podcast_id and description columns")
	flags.StringVar(&out, "out", "", "output directory (defaults to the configured token directory)")
	flags.Int("workers", 0, "tokenizer workers (0 uses all CPUs)")
	flags.Bool("stem", false, "reduce words to their snowball stems")
	flags.Bool("bpe", false, "emit cl100k byte-pair pieces instead of words")
	return cmd
}

func (c *cli) tokenize(ctx context.Context, input string, progress io.Writer) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	episodes, skipped, err := readEpisodes(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}
	if skipped > 0 {
		c.logger.WithField("rows", skipped).Warn("Skipping episodes without podcast id or description")
	}

	var tokOpts []tokenizer.Option
	if c.config.Tokenize.Stem {
		tokOpts = append(tokOpts, tokenizer.WithStemming())
	}
	if c.config.Tokenize.BPE {
		tokOpts = append(tokOpts, tokenizer.WithBPE())
	}
	tok, err := tokenizer.New(tokOpts...)
	if err != nil {
		return err
	}

	dir := c.config.Source.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	out, err := csvdir.NewCSVDirProvider(dir)
	if err != nil {
		return err
	}

	p := mpb.NewWithContext(ctx, mpb.WithOutput(progress), mpb.WithWidth(80))
	bar := p.AddBar(int64(len(episodes)),
		mpb.PrependDecorators(decor.Name("tokenize ")),
		mpb.AppendDecorators(decor.CountersNoUnit("%d / %d"), decor.Name(" "), decor.Percentage()),
	)
	if len(episodes) == 0 {
		bar.SetTotal(0, true)
	}

	counts, err := aggregate(ctx, episodes, tok, c.config.Tokenize.Workers, bar.Increment)
	if err != nil {
		bar.Abort(false)
		p.Wait()
		return err
	}
	p.Wait()

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var total int
	for _, id := range ids {
		if err := out.Write(id, counts[id]); err != nil {
			return err
		}
		total += counts[id].Total()
	}

	c.logger.WithFields(logrus.Fields{
		"episodes": len(episodes),
		"podcasts": len(ids),
		"tokens":   total,
		"dir":      dir,
	}).Info("Wrote podcast token counts")
	return nil
}

// readEpisodes reads the episodes CSV by header name. Rows missing either
// column value are counted and left out.
func readEpisodes(r io.Reader) ([]episode, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, err
	}
	idCol, descCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case idColumn:
			idCol = i
		case descriptionColumn:
			descCol = i
		}
	}
	if idCol < 0 || descCol < 0 {
		return nil, 0, fmt.Errorf("header must contain %q and %q", idColumn, descriptionColumn)
	}

	var episodes []episode
	var skipped int
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		if idCol >= len(record) || descCol >= len(record) {
			skipped++
			continue
		}
		id, desc := strings.TrimSpace(record[idCol]), record[descCol]
		if id == "" || strings.TrimSpace(desc) == "" {
			skipped++
			continue
		}
		episodes = append(episodes, episode{podcastID: id, description: desc})
	}
	return episodes, skipped, nil
}

// aggregate tokenizes every episode on a bounded worker pool and sums the
// counts per podcast. done is called once per finished episode.
func aggregate(ctx context.Context, episodes []episode, tok *tokenizer.Tokenizer, workers int, done func()) (map[string]types.TokenCounts, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	totals := make(map[string]types.TokenCounts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, ep := range episodes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			counts := tok.Count(ep.description)

			mu.Lock()
			total, ok := totals[ep.podcastID]
			if !ok {
				total = make(types.TokenCounts)
				totals[ep.podcastID] = total
			}
			for token, n := range counts {
				total[token] += n
			}
			mu.Unlock()

			if done != nil {
				done()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return totals, nil
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botirk38/podcastsim/neighbors"
	"github.com/botirk38/podcastsim/providers/csvdir"
	"github.com/botirk38/podcastsim/tokenizer"
)

const episodesCSV = `podcast_id,title,description
p1,One,"Ancient history of Rome and Greece."
p1,Two,"Roman emperors and ancient battles. Subscribe and follow us on Instagram today."
p2,Three,"Ancient history of Rome and Egypt."
p3,Four,"Quantum physics and particle research."
,Five,"No podcast id here."
p4,Six,""
`

func TestReadEpisodes(t *testing.T) {
	episodes, skipped, err := readEpisodes(strings.NewReader(episodesCSV))
	require.NoError(t, err)
	assert.Len(t, episodes, 4)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, "p1", episodes[0].podcastID)

	_, _, err = readEpisodes(strings.NewReader("id,text\n1,hello\n"))
	assert.Error(t, err)
}

func TestAggregate(t *testing.T) {
	episodes, _, err := readEpisodes(strings.NewReader(episodesCSV))
	require.NoError(t, err)
	tok, err := tokenizer.New()
	require.NoError(t, err)

	var calls int
	var done = func() { calls++ }

	serial, err := aggregate(context.Background(), episodes, tok, 1, done)
	require.NoError(t, err)
	assert.Equal(t, len(episodes), calls)

	assert.Equal(t, 2, serial["p1"]["ancient"])
	assert.Equal(t, 1, serial["p1"]["emperors"])
	assert.NotContains(t, serial["p1"], "instagram")
	assert.Len(t, serial, 3)

	parallel, err := aggregate(context.Background(), episodes, tok, 8, nil)
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = aggregate(ctx, episodes, tok, 2, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadIDs(t *testing.T) {
	ids, err := readIDs(strings.NewReader("p1\n\n# comment\n  p2  \n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	require.NoError(t, root.ExecuteContext(context.Background()), stderr.String())
	return stdout.String()
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	tokens := filepath.Join(dir, "tokens")
	episodes := writeFile(t, filepath.Join(dir, "episodes.csv"), episodesCSV)
	config := writeFile(t, filepath.Join(dir, "podsim.toml"), fmt.Sprintf(`
log_level = "error"

[source]
dir = %q

[store]
type = "bolt"
path = %q
`, tokens, filepath.Join(dir, "snapshots.db")))

	run(t, "--config", config, "tokenize", "--input", episodes)

	src, err := csvdir.NewCSVDirProvider(tokens)
	require.NoError(t, err)
	ids, err := src.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)

	out := run(t, "--config", config, "build", "--workers", "2")
	assert.Contains(t, out, "sha256:")
	assert.Contains(t, out, "3 podcasts")

	out = run(t, "--config", config, "neighbors", "p1", "-k", "1", "--json")
	var got []neighbors.Neighbor
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)

	out = run(t, "--config", config, "neighbors", "p3")
	assert.Contains(t, out, "DISTANCE")
	assert.Contains(t, out, "p1")

	idsFile := writeFile(t, filepath.Join(dir, "ids.txt"), "p1\np3\n")
	run(t, "--config", config, "build", "--ids", idsFile)
	out = run(t, "--config", config, "neighbors", "p1", "--json")
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "p3", got[0].ID)
}

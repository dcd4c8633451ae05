package cli

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/retrace/internal/harness"
)

func TestGen_WritesReplayableCase(t *testing.T) {
	dbPath := newSeededStore(t, addEntry("entry-0001", 1))
	outDir := filepath.Join(t.TempDir(), "cases")

	out, _, err := runCommand(t, "gen", "--db", dbPath, "-o", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 case(s) written")

	casePath := filepath.Join(outDir, "pkg.add__entry-00.yaml")
	c, err := harness.LoadCase(casePath)
	require.NoError(t, err)

	assert.Equal(t, "pkg.add", c.Func)
	assert.Equal(t, "entry-0001", c.Entry)
	assert.Equal(t, `{"id":1,"tuple":[{"id":2,"list":[1,2]}]}`, c.Args)
	// The result was a reference into args; the expected graph is the
	// inlined, rendered list.
	assert.Equal(t, `[1,2]`, c.Expected)
}

func TestGen_SkipsEntriesWithOrphans(t *testing.T) {
	dbPath := newSeededStore(t, addEntry("good", 1))

	// The guardrail blocks orphan results at write time, so simulate a
	// store produced by an older tool with a raw insert.
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`
		INSERT INTO entries (id, func, args_graph, kwargs_graph, result_graph, seq)
		VALUES ('stale', 'pkg.add', 'null', 'null', '{"ref":99}', 2)
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	outDir := filepath.Join(t.TempDir(), "cases")
	out, _, err := runCommand(t, "gen", "--db", dbPath, "-o", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 case(s) written")
	assert.Contains(t, out, "1 skipped")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pkg.add__good.yaml", entries[0].Name())
}

func TestGen_LimitPerFunc(t *testing.T) {
	dbPath := newSeededStore(t,
		addEntry("a", 1), addEntry("b", 2), addEntry("c", 3))
	outDir := filepath.Join(t.TempDir(), "cases")

	out, _, err := runCommand(t, "gen", "--db", dbPath, "-o", outDir, "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2 case(s) written")
}

func TestCaseFileName_Sanitizes(t *testing.T) {
	assert.Equal(t, "pkg.add__abcd1234.yaml", caseFileName("pkg.add", "abcd1234-rest"))
	assert.Equal(t, "pkg_mod.Fn__id.yaml", caseFileName("pkg/mod.Fn", "id"))
}

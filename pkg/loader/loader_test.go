package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsync/pkg/logger"
)

const snapshotJSON = `[
	{
		"title": "Oversized Hoodie",
		"vendor": "pesoclo",
		"handle": "oversized-hoodie",
		"variants": [
			{"variant_title": "M", "sku": "PES-M", "price": "59.95", "available": true}
		]
	},
	{
		"title": "Cargo Pants",
		"vendor": "pesoclo",
		"handle": "cargo-pants",
		"variants": [
			{"variant_title": "32", "sku": "PES-C32", "price": 89.95, "available": false}
		]
	}
]`

func writeSnapshot(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir, "pesoclo.json", snapshotJSON)

	l := New(logger.NewTestLogger())
	batches, skipped, err := l.LoadFiles([]string{path})
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)

	require.Len(t, batches, 1)
	assert.Equal(t, "pesoclo", batches[0].Brand)
	assert.False(t, batches[0].Partial)
	require.Len(t, batches[0].Products, 2)
	assert.Equal(t, "Oversized Hoodie", batches[0].Products[0].Title)
	assert.Equal(t, "59.95", batches[0].Products[0].Variants[0].Price.Raw)
}

func TestLoadFilesDropsMalformedRecords(t *testing.T) {
	dir := t.TempDir()
	// the second record carries a non-boolean availability flag
	content := `[
		{
			"title": "Oversized Hoodie",
			"vendor": "pesoclo",
			"handle": "oversized-hoodie",
			"variants": [
				{"variant_title": "M", "sku": "PES-M", "price": "59.95", "available": true}
			]
		},
		{
			"title": "Cargo Pants",
			"vendor": "pesoclo",
			"handle": "cargo-pants",
			"variants": [
				{"variant_title": "32", "sku": "PES-C32", "price": "89.95", "available": "yes"}
			]
		}
	]`
	path := writeSnapshot(t, dir, "pesoclo.json", content)

	log := logger.NewTestLogger()
	l := New(log)
	batches, skipped, err := l.LoadFiles([]string{path})
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)

	// the good product survives; only the broken record is lost
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Products, 1)
	assert.Equal(t, "Oversized Hoodie", batches[0].Products[0].Title)
	assert.True(t, batches[0].Partial)
	assert.Len(t, log.GetMessagesByLevel("WARN"), 1)
}

func TestLoadFilesSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeSnapshot(t, dir, "good.json", snapshotJSON)
	broken := writeSnapshot(t, dir, "broken.json", "{not json")
	missing := filepath.Join(dir, "missing.json")

	log := logger.NewTestLogger()
	l := New(log)
	batches, skipped, err := l.LoadFiles([]string{broken, missing, good})
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)

	require.Len(t, batches, 1)
	assert.Equal(t, "good", batches[0].Brand)
	assert.Len(t, log.GetMessagesByLevel("WARN"), 2)
}

func TestLoadFilesAllBrokenFails(t *testing.T) {
	dir := t.TempDir()
	broken := writeSnapshot(t, dir, "broken.json", "nope")

	l := New(logger.NewTestLogger())
	_, skipped, err := l.LoadFiles([]string{broken})
	assert.Error(t, err)
	assert.Equal(t, 1, skipped)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "b-brand.json", snapshotJSON)
	writeSnapshot(t, dir, "a-brand.json", snapshotJSON)
	writeSnapshot(t, dir, "notes.txt", "not a snapshot")

	l := New(logger.NewTestLogger())
	batches, skipped, err := l.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)

	// one batch per .json file, in filename order
	require.Len(t, batches, 2)
	assert.Equal(t, "a-brand", batches[0].Brand)
	assert.Equal(t, "b-brand", batches[1].Brand)
}

func TestLoadDirMissing(t *testing.T) {
	l := New(logger.NewTestLogger())
	_, _, err := l.LoadDir("/nonexistent/snapshots")
	assert.Error(t, err)
}

func TestBrandFromPath(t *testing.T) {
	assert.Equal(t, "pesoclo", BrandFromPath("output/pesoclo.json"))
	assert.Equal(t, "vicinity", BrandFromPath("/data/out/vicinity.json"))
	assert.Equal(t, "plain", BrandFromPath("plain"))
}

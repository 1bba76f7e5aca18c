// Package loader reads the per-brand JSON snapshot files produced by the
// scraping collaborator. Each file holds an ordered list of local products
// and becomes one batch; a broken or missing file skips that batch with a
// warning rather than aborting the run.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shopsync/pkg/logger"
	"shopsync/pkg/models"
)

// Loader turns snapshot files into brand batches
type Loader struct {
	logger logger.Logger
}

// New creates a Loader
func New(log logger.Logger) *Loader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Loader{logger: log}
}

// LoadDir loads every *.json file in dir, one batch per file, in stable
// filename order
func (l *Loader) LoadDir(dir string) ([]models.Batch, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return l.LoadFiles(files)
}

// LoadFiles loads the given snapshot files in order. Files that cannot be
// read or parsed are skipped with a warning; the skipped count is reported
// so callers know the input set is incomplete.
func (l *Loader) LoadFiles(paths []string) ([]models.Batch, int, error) {
	var batches []models.Batch
	skipped := 0

	for _, path := range paths {
		batch, err := l.loadFile(path)
		if err != nil {
			skipped++
			l.logger.WarnWithFields("skipping unreadable snapshot", map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			})
			continue
		}
		batches = append(batches, batch)
	}

	if len(batches) == 0 {
		return nil, skipped, fmt.Errorf("no usable snapshot files among %d candidates", len(paths))
	}

	return batches, skipped, nil
}

// loadFile decodes one snapshot. Records are decoded individually so that a
// single malformed element loses that product, not the whole brand.
func (l *Loader) loadFile(path string) (models.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Batch{}, err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return models.Batch{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	brand := BrandFromPath(path)
	products := make([]models.LocalProduct, 0, len(records))
	dropped := 0
	for i, raw := range records {
		var product models.LocalProduct
		if err := json.Unmarshal(raw, &product); err != nil {
			dropped++
			l.logger.WarnWithFields("skipping malformed product record", map[string]interface{}{
				"file":   path,
				"record": i,
				"error":  err.Error(),
			})
			continue
		}
		products = append(products, product)
	}

	l.logger.InfoWithFields("snapshot loaded", map[string]interface{}{
		"brand":    brand,
		"products": len(products),
		"dropped":  dropped,
	})

	return models.Batch{Brand: brand, Products: products, Partial: dropped > 0}, nil
}

// BrandFromPath derives the brand name from a snapshot filename
// ("output/pesoclo.json" → "pesoclo")
func BrandFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

package review

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const yamlExtension = ".yml"

// YAMLRepository stores each record as <item id>.yml in a directory.
type YAMLRepository struct {
	directory string
}

// NewYAMLRepository creates a new YAMLRepository.
func NewYAMLRepository(directory string) *YAMLRepository {
	return &YAMLRepository{directory: directory}
}

func (r *YAMLRepository) Get(_ context.Context, itemID string) (*Record, error) {
	if err := ValidateItemID(itemID); err != nil {
		return nil, err
	}
	record, err := readYAMLRecord(r.path(itemID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read review %s: %w", itemID, err)
	}
	return record, nil
}

// Upsert writes to a temporary file and renames it so a reader never sees a partial record.
func (r *YAMLRepository) Upsert(_ context.Context, record Record) error {
	if err := ValidateItemID(record.ItemID); err != nil {
		return err
	}
	if err := os.MkdirAll(r.directory, 0o755); err != nil {
		return fmt.Errorf("create review directory: %w", err)
	}

	tmp, err := os.CreateTemp(r.directory, "."+record.ItemID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	enc := yaml.NewEncoder(tmp)
	if err := enc.Encode(record); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode review %s: %w", record.ItemID, err)
	}
	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush review %s: %w", record.ItemID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path(record.ItemID)); err != nil {
		return fmt.Errorf("rename review %s: %w", record.ItemID, err)
	}
	return nil
}

// ListAll reads every record in the directory, ordered by next review.
// A missing directory means no item has been reviewed yet.
func (r *YAMLRepository) ListAll(_ context.Context) ([]Record, error) {
	entries, err := os.ReadDir(r.directory)
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read review directory: %w", err)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != yamlExtension {
			continue
		}
		record, err := readYAMLRecord(filepath.Join(r.directory, name))
		if err != nil {
			return nil, fmt.Errorf("read review file %s: %w", name, err)
		}
		records = append(records, *record)
	}
	SortByNextReview(records)
	return records, nil
}

func (r *YAMLRepository) path(itemID string) string {
	return filepath.Join(r.directory, itemID+yamlExtension)
}

func readYAMLRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record Record
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}
	return &record, nil
}

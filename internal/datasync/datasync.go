// Package datasync moves review records between files and a review.Store.
package datasync

import (
	"context"
	"fmt"
	"io"

	"github.com/at-ishikawa/recall/internal/review"
)

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	New      int
	Skipped  int
	Updated  int
	Warnings int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
}

// Importer writes review records into a store.
type Importer struct {
	store  review.Store
	writer io.Writer
}

// NewImporter creates a new Importer.
func NewImporter(store review.Store, writer io.Writer) *Importer {
	return &Importer{
		store:  store,
		writer: writer,
	}
}

// ImportDirectory reads every review file in dir and imports the records.
func (imp *Importer) ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error) {
	records, warnings, err := ReadDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("ReadDirectory() > %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(imp.writer, "  [WARN]  %s\n", w)
	}

	result, err := imp.ImportRecords(ctx, records, opts)
	if err != nil {
		return nil, err
	}
	result.Warnings += len(warnings)
	return result, nil
}

// ImportRecords creates records missing from the store.
// Existing records are skipped unless opts.UpdateExisting is set.
func (imp *Importer) ImportRecords(ctx context.Context, records []review.Record, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult
	var writes []review.Record

	for _, r := range records {
		existing, err := imp.store.Get(ctx, r.ItemID)
		if err != nil {
			return nil, fmt.Errorf("Get(%s) > %w", r.ItemID, err)
		}

		switch {
		case existing == nil:
			fmt.Fprintf(imp.writer, "  [NEW]  %q (next review %s)\n", r.ItemID, r.NextReview.Format("2006-01-02"))
			result.New++
		case !opts.UpdateExisting:
			fmt.Fprintf(imp.writer, "  [SKIP]  %q\n", r.ItemID)
			result.Skipped++
			continue
		default:
			fmt.Fprintf(imp.writer, "  [UPDATE]  %q (next review %s)\n", r.ItemID, r.NextReview.Format("2006-01-02"))
			result.Updated++
		}
		writes = append(writes, r)
	}

	if opts.DryRun || len(writes) == 0 {
		return &result, nil
	}
	if err := imp.write(ctx, writes); err != nil {
		return nil, err
	}
	return &result, nil
}

func (imp *Importer) write(ctx context.Context, records []review.Record) error {
	if batch, ok := imp.store.(review.BatchUpserter); ok {
		if err := batch.BatchUpsert(ctx, records); err != nil {
			return fmt.Errorf("BatchUpsert() > %w", err)
		}
		return nil
	}
	for _, r := range records {
		if err := imp.store.Upsert(ctx, r); err != nil {
			return fmt.Errorf("Upsert(%s) > %w", r.ItemID, err)
		}
	}
	return nil
}

// Exporter reads every record from a store and hands it to a sink.
type Exporter struct {
	store review.Store
	sink  *YAMLReviewSink
}

// NewExporter creates a new Exporter.
func NewExporter(store review.Store, sink *YAMLReviewSink) *Exporter {
	return &Exporter{store: store, sink: sink}
}

// Export writes all records ordered by next review and returns the written path and count.
func (e *Exporter) Export(ctx context.Context) (string, int, error) {
	records, err := e.store.ListAll(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("ListAll() > %w", err)
	}
	review.SortByNextReview(records)

	path, err := e.sink.WriteAll(records)
	if err != nil {
		return "", 0, fmt.Errorf("WriteAll() > %w", err)
	}
	return path, len(records), nil
}

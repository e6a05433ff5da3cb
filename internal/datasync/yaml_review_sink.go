package datasync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/recall/internal/review"
)

const reviewsFileName = "reviews.yml"

type exportReview struct {
	ItemID       string  `yaml:"item_id"`
	LastReviewed string  `yaml:"last_reviewed"`
	NextReview   string  `yaml:"next_review"`
	IntervalDays int     `yaml:"interval_days"`
	Repetitions  int     `yaml:"repetitions"`
	EaseFactor   float64 `yaml:"ease_factor"`
}

func (e exportReview) toRecord() (review.Record, error) {
	l := legacyReview{
		RowItemID:       e.ItemID,
		RowLastReviewed: e.LastReviewed,
		RowNextReview:   e.NextReview,
		RowIntervalDays: &e.IntervalDays,
		Repetitions:     &e.Repetitions,
		RowEaseFactor:   &e.EaseFactor,
	}
	return l.toRecord()
}

// YAMLReviewSink writes review records to a YAML file.
type YAMLReviewSink struct {
	outputDir string
}

// NewYAMLReviewSink creates a new YAMLReviewSink.
func NewYAMLReviewSink(outputDir string) *YAMLReviewSink {
	return &YAMLReviewSink{outputDir: outputDir}
}

// WriteAll writes records to reviews.yml and returns the file path.
func (s *YAMLReviewSink) WriteAll(records []review.Record) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	out := make([]exportReview, len(records))
	for i, r := range records {
		out[i] = exportReview{
			ItemID:       r.ItemID,
			LastReviewed: r.LastReviewed.UTC().Format(time.RFC3339),
			NextReview:   r.NextReview.UTC().Format(time.RFC3339),
			IntervalDays: r.IntervalDays,
			Repetitions:  r.Repetitions,
			EaseFactor:   r.EaseFactor,
		}
	}

	path := filepath.Join(s.outputDir, reviewsFileName)
	if err := writeYAML(path, out); err != nil {
		return "", fmt.Errorf("write %s: %w", reviewsFileName, err)
	}
	return path, nil
}

func writeYAML(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}

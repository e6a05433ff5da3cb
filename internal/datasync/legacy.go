package datasync

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/recall/internal/review"
)

var errMissingField = errors.New("missing field")

// legacyReview accepts both historical review shapes: the per-problem JSON files
// (camelCase, "interval") and database row dumps (snake_case, "interval_days").
type legacyReview struct {
	ProblemID    string   `json:"problemId"`
	LastReviewed string   `json:"lastReviewed"`
	NextReview   string   `json:"nextReview"`
	Interval     *int     `json:"interval"`
	Repetitions  *int     `json:"repetitions"`
	EaseFactor   *float64 `json:"easeFactor"`
	Difficulty   string   `json:"difficulty"`

	RowProblemID    string   `json:"problem_id"`
	RowItemID       string   `json:"item_id"`
	RowLastReviewed string   `json:"last_reviewed"`
	RowNextReview   string   `json:"next_review"`
	RowIntervalDays *int     `json:"interval_days"`
	RowEaseFactor   *float64 `json:"ease_factor"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
}

func parseLegacyTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format %q", value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// toRecord maps a legacy review onto review.Record.
// A missing next review date is derived from the last review and the interval.
func (l legacyReview) toRecord() (review.Record, error) {
	itemID := firstNonEmpty(l.ProblemID, l.RowProblemID, l.RowItemID)
	if itemID == "" {
		return review.Record{}, fmt.Errorf("%w: problemId", errMissingField)
	}
	if err := review.ValidateItemID(itemID); err != nil {
		return review.Record{}, err
	}

	lastReviewedValue := firstNonEmpty(l.LastReviewed, l.RowLastReviewed)
	if lastReviewedValue == "" {
		return review.Record{}, fmt.Errorf("%w: lastReviewed", errMissingField)
	}
	lastReviewed, err := parseLegacyTime(lastReviewedValue)
	if err != nil {
		return review.Record{}, fmt.Errorf("lastReviewed: %w", err)
	}

	interval := l.Interval
	if interval == nil {
		interval = l.RowIntervalDays
	}
	if interval == nil {
		return review.Record{}, fmt.Errorf("%w: interval", errMissingField)
	}
	if *interval < 0 {
		return review.Record{}, fmt.Errorf("interval must not be negative: %d", *interval)
	}

	repetitions := 0
	if l.Repetitions != nil {
		repetitions = *l.Repetitions
	}
	if repetitions < 0 {
		return review.Record{}, fmt.Errorf("repetitions must not be negative: %d", repetitions)
	}
	if repetitions > 0 && *interval < 1 {
		return review.Record{}, fmt.Errorf("interval must be at least 1 after a successful review: %d", *interval)
	}

	easeFactor := review.DefaultEaseFactor
	if l.EaseFactor != nil {
		easeFactor = *l.EaseFactor
	} else if l.RowEaseFactor != nil {
		easeFactor = *l.RowEaseFactor
	}
	if easeFactor < review.MinEaseFactor {
		easeFactor = review.MinEaseFactor
	}

	nextReview := lastReviewed.AddDate(0, 0, *interval)
	if value := firstNonEmpty(l.NextReview, l.RowNextReview); value != "" {
		nextReview, err = parseLegacyTime(value)
		if err != nil {
			return review.Record{}, fmt.Errorf("nextReview: %w", err)
		}
	}

	return review.Record{
		ItemID:       itemID,
		LastReviewed: lastReviewed.UTC(),
		NextReview:   nextReview.UTC(),
		IntervalDays: *interval,
		Repetitions:  repetitions,
		EaseFactor:   easeFactor,
	}, nil
}

// SourceWarning is a review that could not be read.
type SourceWarning struct {
	Path string
	Err  error
}

func (w SourceWarning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// ReadDirectory reads every review in dir.
// *.json files hold one legacy review or an array of rows; *.yml and *.yaml files hold exported reviews.
// Unreadable entries are reported as warnings and do not stop the read.
func ReadDirectory(dir string) ([]review.Record, []SourceWarning, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("os.ReadDir(%s) > %w", dir, err)
	}

	var records []review.Record
	var warnings []SourceWarning
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		var fileRecords []review.Record
		var fileWarnings []SourceWarning
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json":
			fileRecords, fileWarnings, err = readJSONFile(path)
		case ".yml", ".yaml":
			fileRecords, fileWarnings, err = readYAMLFile(path)
		default:
			continue
		}
		if err != nil {
			warnings = append(warnings, SourceWarning{Path: path, Err: err})
			continue
		}
		records = append(records, fileRecords...)
		warnings = append(warnings, fileWarnings...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ItemID < records[j].ItemID
	})
	return records, warnings, nil
}

func readJSONFile(path string) ([]review.Record, []SourceWarning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var rows []legacyReview
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, nil, fmt.Errorf("json.Unmarshal > %w", err)
		}
	} else {
		var row legacyReview
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return nil, nil, fmt.Errorf("json.Unmarshal > %w", err)
		}
		rows = []legacyReview{row}
	}

	records := make([]review.Record, 0, len(rows))
	var warnings []SourceWarning
	for i, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			warnings = append(warnings, SourceWarning{Path: fmt.Sprintf("%s[%d]", path, i), Err: err})
			continue
		}
		records = append(records, record)
	}
	return records, warnings, nil
}

func readYAMLFile(path string) ([]review.Record, []SourceWarning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var rows []exportReview
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, nil, fmt.Errorf("yaml.Unmarshal > %w", err)
	}

	records := make([]review.Record, 0, len(rows))
	var warnings []SourceWarning
	for i, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			warnings = append(warnings, SourceWarning{Path: fmt.Sprintf("%s[%d]", path, i), Err: err})
			continue
		}
		records = append(records, record)
	}
	return records, warnings, nil
}

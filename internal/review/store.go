package review

import (
	"context"
	"fmt"
	"strings"
)

//go:generate mockgen -source=store.go -destination=../mocks/review/mock_store.go -package=mock_review

// Store persists one Record per item.
// Get returns nil without an error when the item has never been graded.
type Store interface {
	Get(ctx context.Context, itemID string) (*Record, error)
	Upsert(ctx context.Context, record Record) error
	ListAll(ctx context.Context) ([]Record, error)
}

// BatchUpserter is implemented by stores that can write many records atomically.
type BatchUpserter interface {
	BatchUpsert(ctx context.Context, records []Record) error
}

// ValidateItemID rejects ids that are empty or cannot be used as a file name.
func ValidateItemID(itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidItemID)
	}
	if itemID == "." || itemID == ".." || strings.ContainsAny(itemID, `/\`) || strings.ContainsRune(itemID, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidItemID, itemID)
	}
	return nil
}

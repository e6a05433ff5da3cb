package review

import "errors"

var (
	ErrInvalidQuality = errors.New("review: quality must be an integer between 0 and 5")
	ErrInvalidItemID  = errors.New("review: invalid item id")
)

package review

import (
	"sort"
	"time"
)

// IsDue reports whether r may be reviewed at now. A record due exactly at now is due.
func IsDue(r Record, now time.Time) bool {
	return !now.Before(r.NextReview)
}

// DueItems returns the due records of all, most overdue first.
// Records with the same next review are ordered by item id. all is left untouched.
func DueItems(all []Record, now time.Time) []Record {
	due := make([]Record, 0, len(all))
	for _, r := range all {
		if IsDue(r, now) {
			due = append(due, r)
		}
	}
	SortByNextReview(due)
	return due
}

// SortByNextReview sorts records by next review, then item id.
func SortByNextReview(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.NextReview.Equal(b.NextReview) {
			return a.NextReview.Before(b.NextReview)
		}
		return a.ItemID < b.ItemID
	})
}

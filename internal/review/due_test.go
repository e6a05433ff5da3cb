package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsDue(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		nextReview time.Time
		want       bool
	}{
		{name: "overdue", nextReview: now.Add(-48 * time.Hour), want: true},
		{name: "due exactly now", nextReview: now, want: true},
		{name: "one nanosecond in the future", nextReview: now.Add(time.Nanosecond), want: false},
		{name: "next week", nextReview: now.AddDate(0, 0, 7), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDue(Record{ItemID: "x", NextReview: tt.nextReview}, now))
		})
	}
}

func TestIsDue_FreshSeed(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	seed := NewSeed("new-item", now)
	assert.True(t, IsDue(seed, seed.NextReview))
}

func TestDueItems(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	all := []Record{
		{ItemID: "future", NextReview: now.Add(time.Hour)},
		{ItemID: "b-today", NextReview: now},
		{ItemID: "very-old", NextReview: now.AddDate(0, 0, -9)},
		{ItemID: "a-today", NextReview: now},
		{ItemID: "yesterday", NextReview: now.AddDate(0, 0, -1)},
		{ItemID: "next-month", NextReview: now.AddDate(0, 1, 0)},
	}
	original := append([]Record(nil), all...)

	got := DueItems(all, now)

	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ItemID
	}
	assert.Equal(t, []string{"very-old", "yesterday", "a-today", "b-today"}, ids)
	assert.Equal(t, original, all)
}

func TestDueItems_Empty(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Empty(t, DueItems(nil, now))
	assert.Empty(t, DueItems([]Record{{ItemID: "later", NextReview: now.Add(time.Minute)}}, now))
}

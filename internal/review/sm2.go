package review

import (
	"math"
	"time"
)

// Schedule grades r with quality q at now and returns the replacement record.
// It does not validate q: any value >= 3 counts as a pass and anything lower as a lapse.
func Schedule(r Record, q Quality, now time.Time) Record {
	interval := r.IntervalDays
	repetitions := r.Repetitions

	if q.IsPass() {
		switch repetitions {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = growInterval(interval, r.EaseFactor)
		}
		repetitions++
	} else {
		repetitions = 0
		interval = 1
	}

	return Record{
		ItemID:       r.ItemID,
		LastReviewed: now,
		NextReview:   now.AddDate(0, 0, interval),
		IntervalDays: interval,
		Repetitions:  repetitions,
		EaseFactor:   UpdateEaseFactor(r.EaseFactor, q),
	}
}

// UpdateEaseFactor applies the SM-2 ease delta for q, floored at MinEaseFactor.
func UpdateEaseFactor(ef float64, q Quality) float64 {
	d := float64(5 - q)
	return math.Max(MinEaseFactor, ef+0.1-d*(0.08+d*0.02))
}

// growInterval rounds half up and never returns less than one day.
func growInterval(interval int, ef float64) int {
	next := int(math.Floor(float64(interval)*ef + 0.5))
	if next < 1 {
		return 1
	}
	return next
}

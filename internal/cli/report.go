package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/recall/internal/activity"
	"github.com/at-ishikawa/recall/internal/review"
	"github.com/at-ishikawa/recall/internal/session"
)

const dateFormat = "2006-01-02 15:04"

// Reporter prints review state for a terminal.
type Reporter struct {
	writer io.Writer
	bold   *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
}

func NewReporter(writer io.Writer) *Reporter {
	return &Reporter{
		writer: writer,
		bold:   color.New(color.Bold),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
	}
}

// PrintDue prints the due queue. With all set, reviews that are not due yet follow it.
func (r *Reporter) PrintDue(summary *session.DueSummary, now time.Time, all bool) {
	if summary.TotalCount == 0 {
		fmt.Fprintln(r.writer, "No reviews recorded yet.")
		return
	}

	_, _ = r.bold.Fprintf(r.writer, "%d of %d reviews due\n", summary.DueCount, summary.TotalCount)
	if summary.DueCount > 0 {
		fmt.Fprintln(r.writer)
		r.printTable(summary.DueReviews, now)
	}

	if !all {
		return
	}
	var upcoming []review.Record
	for _, rec := range summary.Reviews {
		if !review.IsDue(rec, now) {
			upcoming = append(upcoming, rec)
		}
	}
	if len(upcoming) == 0 {
		return
	}
	fmt.Fprintln(r.writer)
	_, _ = r.bold.Fprintln(r.writer, "Upcoming")
	r.printTable(upcoming, now)
}

func (r *Reporter) printTable(records []review.Record, now time.Time) {
	fmt.Fprintf(r.writer, "%-32s  %-16s  %8s  %4s  %5s\n", "Item", "Next review", "Interval", "Reps", "Ease")
	fmt.Fprintf(r.writer, "%-32s  %-16s  %8s  %4s  %5s\n", "----", "-----------", "--------", "----", "----")
	for _, rec := range records {
		next := rec.NextReview.In(now.Location()).Format(dateFormat)
		if review.IsDue(rec, now) {
			next = r.yellow.Sprintf("%-16s", next)
		} else {
			next = fmt.Sprintf("%-16s", next)
		}
		fmt.Fprintf(r.writer, "%-32s  %s  %7dd  %4d  %5.2f\n",
			rec.ItemID, next, rec.IntervalDays, rec.Repetitions, rec.EaseFactor)
	}
}

// PrintGraded prints the outcome of a single grade.
func (r *Reporter) PrintGraded(rec review.Record, quality review.Quality) {
	c := r.green
	if !quality.IsPass() {
		c = r.red
	}
	_, _ = c.Fprintf(r.writer, "%s: %s (%d)\n", rec.ItemID, quality.Label(), int(quality))
	fmt.Fprintf(r.writer, "  next review %s (in %d days), repetitions %d, ease %.2f\n",
		rec.NextReview.Format(dateFormat), rec.IntervalDays, rec.Repetitions, rec.EaseFactor)
}

// PrintHistory prints activity entries, newest first as given.
func (r *Reporter) PrintHistory(logs []activity.Log) {
	if len(logs) == 0 {
		fmt.Fprintln(r.writer, "No activity recorded yet.")
		return
	}
	for _, l := range logs {
		fmt.Fprintf(r.writer, "%s  %-32s  quality %d  interval %dd\n",
			l.CreatedAt.UTC().Format(dateFormat), l.ItemID, l.Quality, l.IntervalDays)
	}
}

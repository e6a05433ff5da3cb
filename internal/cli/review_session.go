// Package cli implements the terminal front end of recall.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/at-ishikawa/recall/internal/review"
	"github.com/at-ishikawa/recall/internal/session"
)

var errEnd = errors.New("end")

// Grader is the review workflow, local or remote.
type Grader interface {
	Grade(ctx context.Context, itemID string, quality review.Quality) (review.Record, error)
	Due(ctx context.Context, now time.Time) (*session.DueSummary, error)
}

// ReviewSessionCLI walks through the due queue and asks for a grade per item.
type ReviewSessionCLI struct {
	grader      Grader
	reporter    *Reporter
	stdinReader *bufio.Reader
	writer      io.Writer
	now         func() time.Time
	reviewed    int
}

func NewReviewSessionCLI(grader Grader, stdin io.Reader, stdout io.Writer) *ReviewSessionCLI {
	return &ReviewSessionCLI{
		grader:      grader,
		reporter:    NewReporter(stdout),
		stdinReader: bufio.NewReader(stdin),
		writer:      stdout,
		now:         time.Now,
	}
}

// Run calls Session until the queue is empty, the input ends or the process is interrupted.
func (cli *ReviewSessionCLI) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	errCh := make(chan error, 1)
	// On interrupt the goroutine may stay blocked reading stdin; the process exits right after Run returns.
	go func() {
		defer close(errCh)
		for ctx.Err() == nil {
			if err := cli.Session(ctx); err != nil {
				if !errors.Is(err, errEnd) {
					errCh <- err
				}
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(cli.writer, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
		fmt.Fprintf(cli.writer, "Reviewed %d items.\n", cli.reviewed)
	}
	return nil
}

// Session grades the first due item. It returns errEnd when nothing is due or the user quits.
func (cli *ReviewSessionCLI) Session(ctx context.Context) error {
	summary, err := cli.grader.Due(ctx, cli.now())
	if err != nil {
		return fmt.Errorf("grader.Due() > %w", err)
	}
	if summary.DueCount == 0 {
		fmt.Fprintln(cli.writer, "Nothing is due.")
		return errEnd
	}

	item := summary.DueReviews[0]
	for {
		_, _ = cli.reporter.bold.Fprintf(cli.writer, "%s", item.ItemID)
		fmt.Fprintf(cli.writer, " (%d left) quality [0-5, again/hard/good/easy, q to quit]: ", summary.DueCount)

		input, err := cli.stdinReader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && input != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(cli.writer)
				return errEnd
			}
			return fmt.Errorf("stdinReader.ReadString() > %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "q" || input == "quit" {
			return errEnd
		}
		quality, err := review.ParseQuality(input)
		if err != nil {
			_, _ = cli.reporter.red.Fprintf(cli.writer, "%v\n", err)
			continue
		}

		graded, err := cli.grader.Grade(ctx, item.ItemID, quality)
		if err != nil {
			return fmt.Errorf("grader.Grade(%s) > %w", item.ItemID, err)
		}
		cli.reviewed++
		cli.reporter.PrintGraded(graded, quality)
		return nil
	}
}

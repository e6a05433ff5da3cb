package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/recall/internal/cli"
)

func newGradeCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "grade <item-id> <quality>",
		Short: "Grade how well an item was recalled (0-5 or again/hard/good/easy)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quality, err := parseQualityArg(args[1])
			if err != nil {
				return err
			}

			grader, closeGrader, err := openGrader(serverURL)
			if err != nil {
				return err
			}
			defer closeGrader()

			record, err := grader.Grade(cmd.Context(), args[0], quality)
			if err != nil {
				return fmt.Errorf("grade %s: %w", args[0], err)
			}
			cli.NewReporter(cmd.OutOrStdout()).PrintGraded(record, quality)
			return nil
		},
	}
	addServerFlag(cmd.Flags(), &serverURL)
	return cmd
}

func newDueCommand() *cobra.Command {
	var serverURL string
	var nowFlag string
	var all bool

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List the reviews that are due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseTimeFlag(nowFlag)
			if err != nil {
				return err
			}

			grader, closeGrader, err := openGrader(serverURL)
			if err != nil {
				return err
			}
			defer closeGrader()

			summary, err := grader.Due(cmd.Context(), now)
			if err != nil {
				return fmt.Errorf("list due reviews: %w", err)
			}
			if now.IsZero() {
				now = time.Now()
			}
			cli.NewReporter(cmd.OutOrStdout()).PrintDue(summary, now, all)
			return nil
		},
	}
	addServerFlag(cmd.Flags(), &serverURL)
	cmd.Flags().StringVar(&nowFlag, "now", "", "evaluate the queue at this time instead of the current time")
	cmd.Flags().BoolVar(&all, "all", false, "also list reviews that are not due yet")
	return cmd
}

func newReviewCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review due items interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			grader, closeGrader, err := openGrader(serverURL)
			if err != nil {
				return err
			}
			defer closeGrader()

			return cli.NewReviewSessionCLI(grader, os.Stdin, cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
	addServerFlag(cmd.Flags(), &serverURL)
	return cmd
}

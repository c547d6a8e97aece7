package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/contrib-tracker/internal/domain"
	"github.com/naka-gawa/contrib-tracker/internal/report"
	"github.com/naka-gawa/contrib-tracker/internal/usecase"
)

const trackHelp = `Commands:
  add USER          fetch USER for the current range and append it
  remove USER       stop tracking USER
  range FROM TO     set both dates and refresh every user
  from DATE         set the start date (refreshes when both dates are set)
  to DATE           set the end date (refreshes when both dates are set)
  list              show the tracked users
  summary           show totals across fetched users
  help              show this help
  quit              leave the session`

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Starts an interactive session to add, remove and refresh tracked users",
	Long: `Starts an interactive session reading commands from standard input.
Seeded users (GITHUB_STATS_USERS) are loaded at startup and fetched as soon
as both dates are set.

` + trackHelp,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger(cmd)

		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		dateRange, err := domain.NewDateRange(fromStr, toStr)
		if err != nil {
			return err
		}

		_, workflow, err := setup(cmd, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		s := &session{workflow: workflow, out: cmd.OutOrStdout()}
		if err := workflow.SetRange(ctx, dateRange); err != nil {
			return err
		}
		return s.run(ctx, cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
	trackCmd.Flags().String("from", "", "Initial start date (YYYY-MM-DD or YYYY/MM/DD)")
	trackCmd.Flags().String("to", "", "Initial end date, inclusive (YYYY-MM-DD or YYYY/MM/DD)")
}

// session binds text commands to a workflow.
type session struct {
	workflow *usecase.StatsWorkflow
	out      io.Writer
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	s.printList()
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			break
		}
		quit, err := s.execute(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit || ctx.Err() != nil {
			return nil
		}
	}
	fmt.Fprintln(s.out)
	return scanner.Err()
}

// execute runs a single command line. It reports whether the session should end.
func (s *session) execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "add":
		if len(args) != 1 {
			return false, errors.New("usage: add USER")
		}
		user, added := s.workflow.AddUser(ctx, args[0], s.workflow.Range())
		if !added {
			fmt.Fprintf(s.out, "%s is already tracked\n", args[0])
			return false, nil
		}
		s.printUsers([]domain.TrackedUser{user})
	case "remove", "rm":
		if len(args) != 1 {
			return false, errors.New("usage: remove USER")
		}
		if !s.workflow.RemoveUser(args[0]) {
			fmt.Fprintf(s.out, "%s is not tracked\n", args[0])
		}
	case "range":
		if len(args) != 2 {
			return false, errors.New("usage: range FROM TO")
		}
		r, err := domain.NewDateRange(args[0], args[1])
		if err != nil {
			return false, err
		}
		return false, s.setRange(ctx, r)
	case "from", "to":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: %s DATE", name)
		}
		date, err := domain.ParseDate(args[0])
		if err != nil {
			return false, err
		}
		r := s.workflow.Range()
		if name == "from" {
			r.From = date
		} else {
			r.To = date
		}
		return false, s.setRange(ctx, r)
	case "list", "ls":
		s.printList()
	case "summary":
		return false, report.WriteSummary(s.out, usecase.Summarize(s.workflow.Users()))
	case "help", "?":
		fmt.Fprintln(s.out, trackHelp)
	case "quit", "exit", "q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type help", name)
	}
	return false, nil
}

func (s *session) setRange(ctx context.Context, r domain.DateRange) error {
	if err := s.workflow.SetRange(ctx, r); err != nil {
		return err
	}
	s.printList()
	return nil
}

func (s *session) printList() {
	s.printUsers(s.workflow.Users())
}

func (s *session) printUsers(users []domain.TrackedUser) {
	if err := report.WriteText(s.out, report.Report{Range: s.workflow.Range(), Users: users}); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}

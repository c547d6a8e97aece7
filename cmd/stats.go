// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/contrib-tracker/internal/domain"
	"github.com/naka-gawa/contrib-tracker/internal/report"
	"github.com/naka-gawa/contrib-tracker/internal/usecase"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Fetches contribution counts for a list of users",
	Long: `Fetches contribution counts for every seeded user (GITHUB_STATS_USERS) plus
each --user, for the given date range, and prints them in order.`,
	Example: `  github-stats stats --from 2024-01-01 --to 2024-01-31 -u alice -u bob
  github-stats stats --from 2024/01/01 --to 2024/01/31 --format xlsx --output january.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger(cmd)

		users, _ := cmd.Flags().GetStringSlice("user")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		formatStr, _ := cmd.Flags().GetString("format")
		outputPath, _ := cmd.Flags().GetString("output")
		withSummary, _ := cmd.Flags().GetBool("summary")

		format, err := report.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		dateRange, err := domain.NewDateRange(fromStr, toStr)
		if err != nil {
			return err
		}
		if !dateRange.Complete() {
			return errors.New("--from and --to must not be empty")
		}

		_, workflow, err := setup(cmd, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		workflow.Seed(strings.Join(users, ","))
		if len(workflow.Users()) == 0 {
			return errors.New("no users to track: pass --user or set GITHUB_STATS_USERS")
		}

		// Setting the range refreshes every seeded user.
		if err := workflow.SetRange(ctx, dateRange); err != nil {
			return err
		}

		rep := report.Report{Range: workflow.Range(), Users: workflow.Users()}
		if withSummary {
			summary := usecase.Summarize(rep.Users)
			rep.Summary = &summary
		}

		if err := writeReport(cmd.OutOrStdout(), outputPath, format, rep); err != nil {
			return err
		}
		logger.Printf("Report written (%s).\n", format)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringSliceP("user", "u", nil, "GitHub user name to track (repeatable, comma-separated)")
	statsCmd.Flags().String("from", "", "Start date (YYYY-MM-DD or YYYY/MM/DD)")
	statsCmd.Flags().String("to", "", "End date, inclusive (YYYY-MM-DD or YYYY/MM/DD)")
	statsCmd.Flags().StringP("format", "f", string(report.FormatJSON), "Output format: json, text or xlsx")
	statsCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of standard output")
	statsCmd.Flags().Bool("summary", false, "Include totals, means and medians across users")
	statsCmd.MarkFlagRequired("from")
	statsCmd.MarkFlagRequired("to")
}

// writeReport writes rep to path, or to out when path is empty.
func writeReport(out io.Writer, path string, format report.Format, rep report.Report) error {
	if path == "" {
		if err := report.Write(out, format, rep); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := report.Write(file, format, rep); err != nil {
		file.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

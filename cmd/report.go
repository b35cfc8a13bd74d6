package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/wintracker/internal/publish"
	"github.com/pable/wintracker/internal/report"
)

var (
	reportUser    string
	reportOut     string
	reportPublish bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print leaderboards and render the report image",
	Long: `Rank a user's opponents by win and loss ratio, print both leaderboards, and
render the report PNG. With --publish the image is also uploaded to R2 when
R2 credentials are configured, or written under REPORT_DIR otherwise.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportUser, "user", "u", "", "user name")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output PNG path (default wintracker-report-<date>.png)")
	reportCmd.Flags().BoolVar(&reportPublish, "publish", false, "publish the image to R2 or REPORT_DIR")
	_ = reportCmd.MarkFlagRequired("user")
}

func runReport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := resolveUser(st, reportUser)
	if err != nil {
		return err
	}
	matches, err := st.ListMatches(u.ID)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}

	gen, err := newGenerator()
	if err != nil {
		return err
	}
	a, err := gen.Generate(matches, u.Name)
	if err != nil {
		return err
	}
	report.PrintLeaderboards(os.Stdout, a.Data)

	out := reportOut
	if out == "" {
		out = a.Filename()
	}
	if err := os.WriteFile(out, a.PNG, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\nWrote %s (%d bytes, id %s)\n", out, len(a.PNG), a.ID)

	if reportPublish {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		sink, err := newSink(ctx)
		if err != nil {
			return err
		}
		loc, err := publish.Publish(ctx, sink, a)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Published: %s\n", loc)
	}
	return nil
}

// newSink prefers R2 and falls back to the local report directory.
func newSink(ctx context.Context) (publish.Sink, error) {
	if cfg.R2.Enabled() {
		return publish.NewR2Sink(ctx, cfg.R2)
	}
	return publish.DirSink{Root: cfg.ReportDir}, nil
}

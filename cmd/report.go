package cmd

import (
	"fmt"
	"os"

	"s3-utils/core/render"
	"s3-utils/feature/report"
	"s3-utils/feature/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reportFormat string
	reportUnits  string
	reportEmail  bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report how storage changed between the two latest snapshots",
	Long: `Loads the two most recent snapshots and prints per-bucket file and
size deltas. With a single snapshot available, the report shows the
current totals with every bucket counted as new.

Examples:
  # Console table
  report

  # HTML fragment on stdout
  report --format html

  # Deliver the HTML report over the configured SMTP relay
  report --email`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "Output format (text, html, or json)")
	reportCmd.Flags().StringVar(&reportUnits, "units", "binary", "Size units (binary or decimal)")
	reportCmd.Flags().BoolVar(&reportEmail, "email", false, "Send the HTML report over SMTP")

	RootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	units, err := parseUnits(reportUnits)
	if err != nil {
		return err
	}
	if reportFormat != "text" && reportFormat != "html" && reportFormat != "json" {
		return fmt.Errorf("invalid --format value %q (expected text, html, or json)", reportFormat)
	}

	store := snapshot.NewStore(rt.cfg.Snapshot.Dir)
	snaps, err := store.LoadLatest(2)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("no snapshots in %s; run the snapshot command first", rt.cfg.Snapshot.Dir)
	}

	var previous *snapshot.Snapshot
	if len(snaps) > 1 {
		previous = snaps[1]
	}
	rep := snapshot.Compare(snaps[0], previous)

	if reportEmail {
		html, err := report.HTML(rep, units)
		if err != nil {
			return err
		}
		mailer := report.NewMailer(rt.cfg.Report)
		if err := mailer.Send(rep, html); err != nil {
			return err
		}
		rt.logger.Info("Report sent",
			zap.String("to", rt.cfg.Report.To),
			zap.String("subject", mailer.Subject(rep)),
		)
		return nil
	}

	switch reportFormat {
	case "json":
		return render.WriteJSON(os.Stdout, rep)
	case "html":
		html, err := report.HTML(rep, units)
		if err != nil {
			return err
		}
		fmt.Println(html)
		return nil
	default:
		return report.WriteText(os.Stdout, rep, units)
	}
}

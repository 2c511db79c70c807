package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reportLimit int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Browse archived physician reports",
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived reports, newest first",
	Args:  cobra.NoArgs,
	RunE:  runReportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print one archived report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

func init() {
	reportListCmd.Flags().IntVarP(&reportLimit, "limit", "n", 20, "maximum reports to list (0 = all)")
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportList(cmd *cobra.Command, _ []string) error {
	if err := ensureReports(); err != nil {
		return err
	}
	if reportArchive == nil {
		return errors.New("report archive not configured")
	}

	reports, err := reportArchive.ListReports(cmd.Context(), reportLimit)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if len(reports) == 0 {
		cmd.Println("No reports archived yet.")
		return nil
	}

	cmd.Printf("Reports (%d):\n\n", len(reports))
	for _, r := range reports {
		cmd.Printf("  %s\n", r.ID)
		cmd.Printf("      Patient: %s\n", r.DisplayName)
		cmd.Printf("      Session: %s\n", r.SessionID)
		cmd.Printf("      Created: %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		cmd.Println()
	}
	return nil
}

func runReportShow(cmd *cobra.Command, args []string) error {
	if err := ensureReports(); err != nil {
		return err
	}
	if reportArchive == nil {
		return errors.New("report archive not configured")
	}

	report, err := reportArchive.GetReport(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	cmd.Printf("Report %s\n", report.ID)
	cmd.Printf("Patient: %s\n", report.DisplayName)
	cmd.Printf("Session: %s\n", report.SessionID)
	cmd.Printf("Created: %s\n", report.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if report.Location != "" {
		cmd.Printf("Stored:  %s\n", report.Location)
	}
	cmd.Println()
	cmd.Println(report.Text)
	return nil
}

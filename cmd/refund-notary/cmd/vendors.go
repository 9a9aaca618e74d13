package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/decide-fyi/refund-notary/internal/adapter/outbound/rules"
	"github.com/decide-fyi/refund-notary/internal/config"
	"github.com/decide-fyi/refund-notary/internal/domain/refund"
)

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "Print the supported vendor policy table",
	Long: `Print the vendor policy table the server would serve, including the
refund window and evaluation mode for every supported vendor.

Uses the same rules resolution as "start": the embedded default table,
or the file named by rules.file / REFUND_NOTARY_RULES_FILE.

Examples:
  # Print the embedded default table
  refund-notary vendors

  # Print a custom table
  REFUND_NOTARY_RULES_FILE=./policies.yaml refund-notary vendors`,
	RunE: runVendors,
}

func init() {
	rootCmd.AddCommand(vendorsCmd)
}

func runVendors(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	table, err := rules.Load(cfg.Rules.File)
	if err != nil {
		return fmt.Errorf("failed to load policy table: %w", err)
	}

	fmt.Printf("Rules version: %s\n", table.RulesVersion)
	fmt.Printf("Source:        %s\n\n", rulesSource(cfg.Rules.File))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VENDOR\tWINDOW\tPOLICY")
	for _, id := range table.SupportedVendors() {
		policy, _ := table.Lookup(id)
		fmt.Fprintf(w, "%s\t%s\t%s\n", id, windowLabel(policy), policyLabel(policy))
	}
	return w.Flush()
}

func windowLabel(p refund.VendorPolicy) string {
	if p.Mode == refund.ModeRequiresUsageVerification {
		return "-"
	}
	return fmt.Sprintf("%dd", p.WindowDays)
}

func policyLabel(p refund.VendorPolicy) string {
	switch {
	case p.Mode == refund.ModeRequiresUsageVerification:
		return "manual usage review"
	case p.Mode == refund.ModeNoRefunds || p.WindowDays == 0:
		return "no refunds"
	default:
		return "standard window"
	}
}

// Command refund-auditor is a small CLI client for a running refund-notary
// server. It submits a single eligibility question and pretty-prints the
// notarized verdict, for spot-checking policy tables from a terminal.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/decide-fyi/refund-notary/internal/domain/refund"
)

var (
	baseURL string
	region  string
	plan    string
	rawJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "refund-auditor <vendor> <days_since_purchase>",
	Short: "Query a refund-notary server and pretty-print the verdict",
	Long: `Query a running refund-notary server for one eligibility verdict.

The server address is taken from --base, or the REFUND_BASE environment
variable, or http://127.0.0.1:8080.

Examples:
  refund-auditor adobe 12
  refund-auditor spotify 1
  refund-auditor --base http://10.0.0.5:8080 netflix 0
  refund-auditor --json microsoft_365 29`,
	Args: cobra.ExactArgs(2),
	RunE: runAudit,
}

func init() {
	rootCmd.Flags().StringVar(&baseURL, "base", "", "notary base URL (default: $REFUND_BASE or http://127.0.0.1:8080)")
	rootCmd.Flags().StringVar(&region, "region", "US", "customer region")
	rootCmd.Flags().StringVar(&plan, "plan", "individual", "customer plan")
	rootCmd.Flags().BoolVar(&rawJSON, "json", false, "print the raw JSON verdict instead of the formatted view")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAudit(cmd *cobra.Command, args []string) error {
	days, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("days_since_purchase must be a number, got %q", args[1])
	}

	base := baseURL
	if base == "" {
		base = os.Getenv("REFUND_BASE")
	}
	if base == "" {
		base = "http://127.0.0.1:8080"
	}

	req := refund.Request{
		Vendor:            args[0],
		DaysSincePurchase: &days,
		Region:            region,
		Plan:              plan,
	}

	verdict, err := query(base, req)
	if err != nil {
		return err
	}

	if rawJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(verdict)
	}

	printVerdict(verdict)
	return nil
}

func query(base string, req refund.Request) (*refund.Eligibility, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(base+"/refund/eligibility", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to reach notary at %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notary returned HTTP %d", resp.StatusCode)
	}

	var verdict refund.Eligibility
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("failed to decode verdict: %w", err)
	}
	return &verdict, nil
}

func printVerdict(v *refund.Eligibility) {
	verdictColor := color.New(color.FgYellow, color.Bold)
	switch v.Verdict {
	case refund.VerdictAllowed:
		verdictColor = color.New(color.FgGreen, color.Bold)
	case refund.VerdictDenied:
		verdictColor = color.New(color.FgRed, color.Bold)
	}

	dim := color.New(color.Faint)

	fmt.Printf("%-10s %s\n", "Verdict:", verdictColor.Sprint(v.Verdict))
	fmt.Printf("%-10s %s\n", "Code:", v.Code)
	if v.Message != "" {
		fmt.Printf("%-10s %s\n", "Message:", v.Message)
	}
	if v.Vendor != "" {
		fmt.Printf("%-10s %s\n", "Vendor:", v.Vendor)
	}
	if v.WindowDays != nil {
		fmt.Printf("%-10s %d days\n", "Window:", *v.WindowDays)
	}
	if v.DaysSincePurchase != nil {
		fmt.Printf("%-10s %d days\n", "Elapsed:", *v.DaysSincePurchase)
	}
	if len(v.SupportedVendors) > 0 {
		fmt.Printf("%-10s %v\n", "Supported:", v.SupportedVendors)
	}
	fmt.Printf("%-10s %s\n", "Rules:", dim.Sprint(v.RulesVersion))
}

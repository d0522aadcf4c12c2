package cmd

import (
	"fmt"
	"strings"

	"finance-search/client"

	"github.com/spf13/cobra"
)

var (
	searchGeneric    bool
	searchAPIURL     string
	searchQuickIndex int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run one search against a running server and print the results",
	Long: `
The search command drives the same search interface the web client uses and
prints what it would render. Backend failures show the fallback results.

Example:
  finance-search search "analyze AAPL stock performance"
  finance-search search --quick 2             # Run the second quick action
  finance-search search --generic sample      # Use the generic search API
`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchGeneric, "generic", false,
		"Use the generic search API instead of the Finance GPT API")
	searchCmd.Flags().StringVar(&searchAPIURL, "api-url", "",
		"Base URL of the server (overrides API_URL)")
	searchCmd.Flags().IntVarP(&searchQuickIndex, "quick", "q", 0,
		"Run the numbered quick action instead of a typed query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	mode := client.ModeFinance
	if searchGeneric {
		mode = client.ModeGeneric
	}
	presentation := client.PresentationFor(mode)

	baseURL := cfg.APIURL
	if searchAPIURL != "" {
		baseURL = searchAPIURL
	}

	si := client.New(presentation.NewBackend(baseURL, nil), client.WithStaleResponseGuard())
	defer si.Close()

	if searchQuickIndex > 0 {
		if searchQuickIndex > len(presentation.QuickActions) {
			return fmt.Errorf("quick action %d does not exist, %d available", searchQuickIndex, len(presentation.QuickActions))
		}
		si.QuickAction(presentation.QuickActions[searchQuickIndex-1].Query)
	} else {
		si.SetQuery(strings.Join(args, " "))
		si.KeyPress("Enter")
	}
	si.Wait()

	fmt.Fprint(cmd.OutOrStdout(), presentation.Render(si.State()))
	return nil
}

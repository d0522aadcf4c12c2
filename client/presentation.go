package client

import (
	"fmt"
	"net/http"
	"strings"
)

// Mode selects the product variant.
type Mode string

const (
	ModeGeneric Mode = "generic"
	ModeFinance Mode = "finance"
)

type QuickAction struct {
	Label string
	Query string
}

// Presentation is the copy and quick actions of one product variant. Both
// variants drive the same SearchInterface.
type Presentation struct {
	Mode           Mode
	Title          string
	Placeholder    string
	WelcomeTitle   string
	WelcomeMessage string
	LoadingText    string
	WarningText    string
	QuickActions   []QuickAction
}

var GenericPresentation = Presentation{
	Mode:           ModeGeneric,
	Title:          "Search Tool with Gen AI",
	Placeholder:    "Search anything...",
	WelcomeTitle:   "Welcome to Search Tool with Gen AI",
	WelcomeMessage: "Enter your search query above or try one of the quick actions to get started.",
	LoadingText:    "Searching with AI...",
	WarningText:    "Please enter a search query to get started",
	QuickActions: []QuickAction{
		{Label: "Sample Results", Query: "sample"},
		{Label: "First Result", Query: "result 1"},
	},
}

var FinancePresentation = Presentation{
	Mode:           ModeFinance,
	Title:          "Finance Search Tool",
	Placeholder:    "Ask about stocks, market trends, or financial analysis...",
	WelcomeTitle:   "Finance Search Tool with AI",
	WelcomeMessage: "Ask me about stocks, market trends, investment strategies, or any financial topic.",
	LoadingText:    "Searching with AI...",
	WarningText:    "Please enter a search query to get started",
	QuickActions: []QuickAction{
		{Label: "Stock Analysis", Query: "analyze AAPL stock performance"},
		{Label: "Market Trends", Query: "current market trends and outlook"},
		{Label: "Investment Strategy", Query: "portfolio diversification strategies"},
	},
}

// PresentationFor returns the presentation for mode, defaulting to finance.
func PresentationFor(mode Mode) Presentation {
	if mode == ModeGeneric {
		return GenericPresentation
	}
	return FinancePresentation
}

// NewBackend returns the backend this variant talks to.
func (p Presentation) NewBackend(baseURL string, httpClient *http.Client) Backend {
	if p.Mode == ModeGeneric {
		return NewGenericBackend(baseURL, httpClient)
	}
	return NewFinanceBackend(baseURL, httpClient)
}

// Render draws st as plain text.
func (p Presentation) Render(st State) string {
	var b strings.Builder

	if st.ShowEmptyWarning {
		fmt.Fprintf(&b, "! %s\n\n", p.WarningText)
	}

	switch st.View() {
	case ViewLoading:
		b.WriteString(p.LoadingText + "\n")
	case ViewWelcome:
		fmt.Fprintf(&b, "%s\n%s\n", p.WelcomeTitle, p.WelcomeMessage)
		for _, qa := range p.QuickActions {
			fmt.Fprintf(&b, "  - %s: %s\n", qa.Label, qa.Query)
		}
	case ViewEmpty:
		fmt.Fprintf(&b, "No results found\nTry different keywords or check your spelling for \"%s\"\n", st.Query)
	case ViewResults:
		plural := "s"
		if len(st.Results) == 1 {
			plural = ""
		}
		fmt.Fprintf(&b, "%d result%s found for \"%s\" • Generated with AI assistance\n", len(st.Results), plural, st.Query)
		for _, r := range st.Results {
			renderResult(&b, r)
		}
	}
	return b.String()
}

func renderResult(b *strings.Builder, r Result) {
	fmt.Fprintf(b, "\n%s\n%s\n", r.Title, r.Snippet)

	if r.Data != nil {
		if len(r.Data.Stocks) > 0 {
			b.WriteString("Stocks:")
			for _, s := range r.Data.Stocks {
				fmt.Fprintf(b, " %s: $%s (%s)", s.Symbol, s.Price.String(), s.Change)
			}
			b.WriteString("\n")
		}
		if len(r.Data.Indices) > 0 {
			b.WriteString("Indices:")
			for _, idx := range r.Data.Indices {
				fmt.Fprintf(b, " %s: %s (%s)", idx.Name, idx.Value.String(), idx.Change)
			}
			b.WriteString("\n")
		}
	}
	if len(r.Sources) > 0 {
		fmt.Fprintf(b, "Sources: %s\n", strings.Join(r.Sources, ", "))
	}
	if len(r.Suggestions) > 0 {
		fmt.Fprintf(b, "Related searches: %s\n", strings.Join(r.Suggestions, " | "))
	}
}

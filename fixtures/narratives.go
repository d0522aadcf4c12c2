package fixtures

import (
	"fmt"

	"finance-search/models"
)

// SystemPrompts holds the instructions sent to a real LLM for each context key.
var SystemPrompts = map[models.ContextKey]string{
	models.ContextAnalysis: "You are a professional financial analyst AI. Provide comprehensive, accurate financial analysis based on the user's query. " +
		"Include relevant market data, trends, and actionable insights. Format responses in a clear, professional manner.",
	models.ContextSearch: "You are a finance search specialist. Help users find specific financial information, stocks, market data, " +
		"economic indicators, and investment insights. Provide detailed, factual responses with data sources when possible.",
	models.ContextAdvisory: "You are a financial advisory AI. Provide educational financial guidance while clearly stating this is not " +
		"personalized financial advice. Include risk considerations and suggest consulting with financial professionals.",
}

// SystemPrompt returns the prompt for key, falling back to the search prompt.
func SystemPrompt(key models.ContextKey) string {
	return SystemPrompts[key.Normalize()]
}

const searchNarrative = `Based on your search for "%s", here are the key financial insights:

• **Market Analysis**: Current market conditions show mixed signals with volatility in key sectors
• **Investment Considerations**: Consider diversification across asset classes
• **Risk Assessment**: Moderate risk levels with potential for both growth and downside
• **Recommendations**: Consult with a financial advisor for personalized guidance

*Note: This is a simulated response for development purposes.*`

const analysisNarrative = `Financial Analysis for "%s":

**Key Metrics:**
- Market Cap: Analysis pending real-time data
- P/E Ratio: Within industry standards
- Revenue Growth: Positive trend indicators
- Debt-to-Equity: Manageable levels

**Recommendations:**
- Monitor quarterly earnings reports
- Track sector performance trends
- Consider long-term investment horizon

*This is a development mock response. Connect to real financial APIs for live data.*`

const advisoryNarrative = `Financial Advisory Response for "%s":

**Educational Guidance:**
- Diversification remains a fundamental principle
- Risk tolerance assessment is crucial
- Regular portfolio rebalancing recommended
- Emergency fund maintenance is essential

**Important Disclaimer:**
This is educational content only and not personalized financial advice. Please consult with qualified financial professionals for investment decisions.

*Development mode active - connect to production APIs for real advisory content.*`

// Narrative returns the canned narrative for key with query embedded.
// Unknown keys use the search narrative.
func Narrative(key models.ContextKey, query string) string {
	switch key.Normalize() {
	case models.ContextAnalysis:
		return fmt.Sprintf(analysisNarrative, query)
	case models.ContextAdvisory:
		return fmt.Sprintf(advisoryNarrative, query)
	default:
		return fmt.Sprintf(searchNarrative, query)
	}
}

// KnownSources are the source names recognised in narrative text, in the
// order they are reported.
var KnownSources = []string{
	"Bloomberg",
	"Reuters",
	"Wall Street Journal",
	"Financial Times",
	"SEC filings",
	"Yahoo Finance",
}

// DefaultSources is reported when a narrative names no known source.
var DefaultSources = []string{"Market Data Providers", "Financial APIs"}

var suggestions = []string{
	"Stock performance analysis",
	"Market trends today",
	"Portfolio diversification strategies",
	"Economic indicators impact",
	"Sector rotation opportunities",
	"Risk management techniques",
}

// Suggestions returns the first n follow-up queries in their fixed order.
func Suggestions(n int) []string {
	if n > len(suggestions) {
		n = len(suggestions)
	}
	out := make([]string, n)
	copy(out, suggestions[:n])
	return out
}

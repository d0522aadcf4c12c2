package finance

import (
	"context"
	"fmt"
	"strings"

	"finance-search/apperrors"
	"finance-search/models"

	"github.com/shopspring/decimal"
)

var (
	hundred               = decimal.NewFromInt(100)
	highConcentration     = decimal.NewFromInt(50)
	moderateConcentration = decimal.NewFromInt(25)
)

// AnalyzePortfolio values every holding, quoting missing prices through the
// market data provider, and grades risk by the largest position's weight.
func (s *Service) AnalyzePortfolio(ctx context.Context, req models.PortfolioAnalysisRequest) (*models.PortfolioAnalysisResponse, error) {
	if req.Portfolio == nil {
		return nil, apperrors.NewValidationError("Portfolio data is required and must be an array").
			WithDetail("Please provide a portfolio array")
	}
	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = "risk_return"
	}

	weights := make([]models.HoldingWeight, 0, len(req.Portfolio))
	total := decimal.Zero
	for i, h := range req.Portfolio {
		symbol := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if symbol == "" {
			return nil, apperrors.NewValidationError("Holding symbol is required").
				WithDetail(fmt.Sprintf("portfolio entry %d has no symbol", i))
		}
		if h.Shares.IsNegative() {
			return nil, apperrors.NewValidationError("Holding shares must not be negative").
				WithDetail(fmt.Sprintf("portfolio entry %d (%s) has %s shares", i, symbol, h.Shares))
		}

		var price decimal.Decimal
		if h.Price != nil {
			price = *h.Price
		} else {
			price = s.quote(ctx, symbol).Price
		}

		value := price.Mul(h.Shares).Round(2)
		total = total.Add(value)
		weights = append(weights, models.HoldingWeight{Symbol: symbol, Value: value})
	}

	largest := -1
	for i := range weights {
		if total.IsPositive() {
			weights[i].Weight = weights[i].Value.Div(total).Mul(hundred).Round(2)
		}
		if largest < 0 || weights[i].Weight.GreaterThan(weights[largest].Weight) {
			largest = i
		}
	}

	analysis := &models.PortfolioAnalysis{
		AnalysisType: analysisType,
		TotalValue:   total,
		Holdings:     weights,
		RiskLevel:    "low",
	}
	if largest < 0 {
		analysis.Summary = "Portfolio is empty."
	} else {
		top := weights[largest]
		analysis.RiskLevel = riskLevel(top.Weight)
		analysis.Summary = fmt.Sprintf("%d holdings worth %s. Largest position %s at %s%% of value. Risk level: %s.",
			len(weights), total.StringFixed(2), top.Symbol, top.Weight.StringFixed(2), analysis.RiskLevel)
	}

	return &models.PortfolioAnalysisResponse{
		Portfolio: req.Portfolio,
		Analysis:  analysis,
		Timestamp: s.timestamp(),
	}, nil
}

func riskLevel(maxWeight decimal.Decimal) string {
	switch {
	case maxWeight.GreaterThan(highConcentration):
		return "high"
	case maxWeight.GreaterThan(moderateConcentration):
		return "moderate"
	default:
		return "low"
	}
}

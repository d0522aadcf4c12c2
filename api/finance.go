package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"finance-search/apperrors"
	"finance-search/finance"
	"finance-search/models"
)

// FinanceHandler exposes finance.Service over HTTP.
type FinanceHandler struct {
	service *finance.Service
	now     func() time.Time
}

func NewFinanceHandler(service *finance.Service) *FinanceHandler {
	return &FinanceHandler{service: service, now: time.Now}
}

func (h *FinanceHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.FinanceSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	resp, err := h.service.Search(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *FinanceHandler) StockAnalysis(w http.ResponseWriter, r *http.Request) {
	var req models.StockAnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	resp, err := h.service.StockAnalysis(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *FinanceHandler) MarketInsights(w http.ResponseWriter, r *http.Request) {
	var req models.MarketInsightsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	resp, err := h.service.MarketInsights(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// PortfolioAnalysis requires "portfolio" to be a JSON array; anything else,
// including null, is a 400.
func (h *FinanceHandler) PortfolioAnalysis(w http.ResponseWriter, r *http.Request) {
	var raw struct {
		Portfolio    json.RawMessage `json:"portfolio"`
		AnalysisType string          `json:"analysisType"`
	}
	if err := decodeJSON(r, &raw); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	trimmed := strings.TrimSpace(string(raw.Portfolio))
	if !strings.HasPrefix(trimmed, "[") {
		respondWithAppError(w, r, apperrors.NewValidationError("Portfolio data is required and must be an array").
			WithDetail("Please provide a portfolio array"))
		return
	}

	req := models.PortfolioAnalysisRequest{AnalysisType: raw.AnalysisType, Portfolio: []models.Holding{}}
	if err := json.Unmarshal(raw.Portfolio, &req.Portfolio); err != nil {
		respondWithAppError(w, r, apperrors.NewValidationError("Invalid portfolio entry").WithDetail(err.Error()))
		return
	}

	resp, err := h.service.AnalyzePortfolio(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// EconomicIndicators accepts indicators either repeated or comma-separated.
func (h *FinanceHandler) EconomicIndicators(w http.ResponseWriter, r *http.Request) {
	var names []string
	for _, v := range r.URL.Query()["indicators"] {
		names = append(names, strings.Split(v, ",")...)
	}

	resp := h.service.EconomicIndicators(r.Context(), names, r.URL.Query().Get("region"))
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *FinanceHandler) NewsSentiment(w http.ResponseWriter, r *http.Request) {
	var req models.NewsSentimentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.service.NewsSentiment(r.Context(), req))
}

func (h *FinanceHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": models.Timestamp(h.now()),
		"service":   "Finance GPT API",
	})
}

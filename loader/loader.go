package loader

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"finance-search/models"
)

// LoadResults reads search-result fixtures from a CSV file with the columns
// id,title,url,snippet. A header row starting with "id" is skipped. Rows with
// a missing id get their 1-based position.
func LoadResults(filePath string) ([]models.SearchResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) > 0 && len(records[0]) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), "id") {
		records = records[1:]
	}

	results := make([]models.SearchResult, 0, len(records))
	for i, record := range records {
		if len(record) < 2 {
			continue
		}
		id := i + 1
		if raw := strings.TrimSpace(record[0]); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid id %q: %w", i+1, raw, err)
			}
			id = parsed
		}
		result := models.SearchResult{
			ID:    id,
			Title: record[1],
			URL:   "#",
		}
		if len(record) > 2 && record[2] != "" {
			result.URL = record[2]
		}
		if len(record) > 3 {
			result.Snippet = record[3]
		}
		results = append(results, result)
	}

	return results, nil
}

// LoadMarketData reads a market bundle from a JSON file shaped like the
// finance response "data" field.
func LoadMarketData(filePath string) (*models.MarketData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data models.MarketData
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

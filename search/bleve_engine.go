package search

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"finance-search/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/rs/zerolog/log"
)

// document is the indexed form of a search result. TitleKey holds the
// lower-cased title as a single keyword term so a wildcard query gives
// substring semantics, spaces included.
type document struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	TitleKey string `json:"title_key"`
}

var storedFields = []string{"id", "title", "url", "snippet"}

type BleveEngine struct {
	index bleve.Index
}

// NewBleveEngine opens the index at indexPath, creating it when missing, and
// syncs it to results: entries are upserted and documents whose id is no
// longer listed are deleted. An empty indexPath keeps the index in memory.
func NewBleveEngine(indexPath string, results []models.SearchResult) (*BleveEngine, error) {
	var (
		index bleve.Index
		err   error
	)
	if indexPath == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
	} else {
		index, err = bleve.Open(indexPath)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			index, err = bleve.New(indexPath, buildIndexMapping())
			if err != nil {
				return nil, fmt.Errorf("failed to create index: %w", err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to open index: %w", err)
		} else {
			log.Debug().Str("path", indexPath).Msg("opened existing search index")
		}
	}

	keep := make(map[string]bool, len(results))
	for _, r := range results {
		keep[strconv.Itoa(r.ID)] = true
	}
	stale, err := staleIDs(index, keep)
	if err != nil {
		_ = index.Close()
		return nil, err
	}

	batch := index.NewBatch()
	for _, id := range stale {
		batch.Delete(id)
	}
	for _, r := range results {
		doc := document{
			ID:       r.ID,
			Title:    r.Title,
			URL:      r.URL,
			Snippet:  r.Snippet,
			TitleKey: strings.ToLower(r.Title),
		}
		if err := batch.Index(strconv.Itoa(r.ID), doc); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to add to batch: %w", err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to execute batch: %w", err)
	}
	log.Debug().Int("documents", len(results)).Int("removed", len(stale)).Msg("search index ready")

	return &BleveEngine{index: index}, nil
}

// staleIDs lists indexed document ids missing from keep.
func staleIDs(index bleve.Index, keep map[string]bool) ([]string, error) {
	count, err := index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count indexed documents: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)
	res, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed documents: %w", err)
	}

	var stale []string
	for _, hit := range res.Hits {
		if !keep[hit.ID] {
			stale = append(stale, hit.ID)
		}
	}
	return stale, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	idMapping := bleve.NewNumericFieldMapping()
	idMapping.Store = true
	docMapping.AddFieldMappingsAt("id", idMapping)

	textMapping := bleve.NewTextFieldMapping()
	textMapping.Store = true
	docMapping.AddFieldMappingsAt("title", textMapping)
	docMapping.AddFieldMappingsAt("snippet", textMapping)

	urlMapping := bleve.NewTextFieldMapping()
	urlMapping.Index = false
	urlMapping.Store = true
	docMapping.AddFieldMappingsAt("url", urlMapping)

	keyMapping := bleve.NewKeywordFieldMapping()
	keyMapping.Store = false
	docMapping.AddFieldMappingsAt("title_key", keyMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Search returns the entries whose title contains query, case-insensitively,
// ordered by id.
func (e *BleveEngine) Search(q string) []models.SearchResult {
	lowered := strings.ToLower(q)

	// '*' and '?' cannot be escaped in a wildcard query, so such queries
	// scan everything and filter here.
	var searchQuery query.Query
	postFilter := false
	if lowered == "" || strings.ContainsAny(lowered, "*?") {
		searchQuery = bleve.NewMatchAllQuery()
		postFilter = lowered != ""
	} else {
		wildcard := bleve.NewWildcardQuery("*" + lowered + "*")
		wildcard.SetField("title_key")
		searchQuery = wildcard
	}

	size, err := e.index.DocCount()
	if err != nil {
		log.Error().Err(err).Msg("search index doc count failed")
		return []models.SearchResult{}
	}

	searchRequest := bleve.NewSearchRequest(searchQuery)
	searchRequest.Fields = storedFields
	searchRequest.Size = int(size)

	searchResults, err := e.index.Search(searchRequest)
	if err != nil {
		log.Error().Err(err).Str("query", q).Msg("search error")
		return []models.SearchResult{}
	}

	getString := func(fields map[string]interface{}, key string) string {
		if val, ok := fields[key].(string); ok {
			return val
		}
		return ""
	}

	results := make([]models.SearchResult, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		id, _ := hit.Fields["id"].(float64)
		result := models.SearchResult{
			ID:      int(id),
			Title:   getString(hit.Fields, "title"),
			URL:     getString(hit.Fields, "url"),
			Snippet: getString(hit.Fields, "snippet"),
		}
		if postFilter && !strings.Contains(strings.ToLower(result.Title), lowered) {
			continue
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

func (e *BleveEngine) Close() error {
	return e.index.Close()
}

package keyword

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/lexfold/lexfold/internal/models"
)

// globalTenant is the stored sentinel for documents with an empty tenant ID.
// Bleve term queries cannot match an empty string, so global documents are
// indexed under this value instead.
const globalTenant = "_global"

// facet sizes requested from bleve.
const (
	entityTypeFacetSize = 10
	keywordFacetSize    = 25
)

// BleveIndex implements Index using Bleve with a standard analyzer. No
// stemming: contract vocabulary is precise, "indemnification" and "indemnity"
// are different clauses and must not collapse to one term.
type BleveIndex struct {
	index bleve.Index
}

// indexDoc is the shape actually stored in bleve. The embedding never goes
// in; the vector index owns it.
type indexDoc struct {
	TenantID   string    `json:"tenant_id"`
	EntityType string    `json:"entity_type"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Keywords   []string  `json:"keywords"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewBleveIndex creates or opens a bleve index at path. An existing index is
// reused; remove the directory to force a rebuild after a mapping change.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name

	exactField := bleve.NewTextFieldMapping()
	exactField.Analyzer = keyword.Name

	dateField := bleve.NewDateTimeFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", textField)
	docMapping.AddFieldMappingsAt("content", textField)
	docMapping.AddFieldMappingsAt("keywords", exactField)
	docMapping.AddFieldMappingsAt("tenant_id", exactField)
	docMapping.AddFieldMappingsAt("entity_type", exactField)
	docMapping.AddFieldMappingsAt("created_at", dateField)
	docMapping.AddFieldMappingsAt("updated_at", dateField)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index stores doc under its document key, replacing any previous version.
func (b *BleveIndex) Index(ctx context.Context, doc *models.SearchDocument) error {
	tenant := doc.TenantID
	if tenant == "" {
		tenant = globalTenant
	}
	stored := &indexDoc{
		TenantID:   tenant,
		EntityType: string(doc.EntityType),
		Title:      doc.Title,
		Content:    doc.Content,
		Keywords:   doc.Keywords,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
	if err := b.index.Index(doc.Key(), stored); err != nil {
		return fmt.Errorf("index document %q: %w", doc.Key(), err)
	}
	return nil
}

// tenantFilter restricts a query to documents the tenant may see. A tenant
// sees its own documents plus global ones; an empty tenant sees only globals.
func tenantFilter(tenantID string) blevequery.Query {
	global := bleve.NewTermQuery(globalTenant)
	global.SetField("tenant_id")
	if tenantID == "" {
		return global
	}
	own := bleve.NewTermQuery(tenantID)
	own.SetField("tenant_id")
	return bleve.NewDisjunctionQuery(own, global)
}

// Search runs a match query over title, content and keywords within the
// tenant's view and returns up to limit raw-scored results.
func (b *BleveIndex) Search(ctx context.Context, tenantID, query string, limit int, opts *SearchOptions) ([]*Result, error) {
	titleBoost := 1.0
	var entityType models.EntityType
	if opts != nil {
		if opts.TitleBoost > 0 {
			titleBoost = opts.TitleBoost
		}
		entityType = opts.EntityType
	}

	titleQuery := bleve.NewMatchQuery(query)
	titleQuery.SetField("title")
	titleQuery.SetBoost(titleBoost)
	contentQuery := bleve.NewMatchQuery(query)
	contentQuery.SetField("content")
	keywordsQuery := bleve.NewMatchQuery(strings.ToLower(query))
	keywordsQuery.SetField("keywords")

	match := bleve.NewDisjunctionQuery(titleQuery, contentQuery, keywordsQuery)
	parts := []blevequery.Query{match, tenantFilter(tenantID)}
	if entityType != "" {
		et := bleve.NewTermQuery(string(entityType))
		et.SetField("entity_type")
		parts = append(parts, et)
	}

	req := bleve.NewSearchRequest(bleve.NewConjunctionQuery(parts...))
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	out := make([]*Result, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Result{Key: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Suggest returns up to limit completions for prefix, drawn from titles
// within the tenant's view.
func (b *BleveIndex) Suggest(ctx context.Context, tenantID, prefix string, limit int) ([]string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || limit <= 0 {
		return nil, nil
	}

	titlePrefix := bleve.NewPrefixQuery(prefix)
	titlePrefix.SetField("title")

	req := bleve.NewSearchRequest(bleve.NewConjunctionQuery(titlePrefix, tenantFilter(tenantID)))
	req.Size = limit * 4
	req.Fields = []string{"title"}
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve suggest: %w", err)
	}

	seen := make(map[string]struct{})
	var suggestions []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || !strings.HasPrefix(strings.ToLower(s), prefix) {
			return
		}
		lower := strings.ToLower(s)
		if _, ok := seen[lower]; ok {
			return
		}
		seen[lower] = struct{}{}
		suggestions = append(suggestions, s)
	}

	for _, hit := range results.Hits {
		if title, ok := hit.Fields["title"].(string); ok {
			add(title)
		}
		if len(suggestions) >= limit {
			break
		}
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// Facets returns aggregate counts over the tenant's view: entity types,
// keyword terms, and a created_at recency histogram.
func (b *BleveIndex) Facets(ctx context.Context, tenantID string) (*models.Facets, error) {
	req := bleve.NewSearchRequest(bleve.NewConjunctionQuery(bleve.NewMatchAllQuery(), tenantFilter(tenantID)))
	req.Size = 0

	req.AddFacet("entity_types", bleve.NewFacetRequest("entity_type", entityTypeFacetSize))
	req.AddFacet("keywords", bleve.NewFacetRequest("keywords", keywordFacetSize))

	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, -1, 0)
	yearAgo := now.AddDate(-1, 0, 0)

	created := bleve.NewFacetRequest("created_at", 4)
	created.AddDateTimeRange("past_week", weekAgo, now)
	created.AddDateTimeRange("past_month", monthAgo, weekAgo)
	created.AddDateTimeRange("past_year", yearAgo, monthAgo)
	created.AddDateTimeRange("older", time.Time{}, yearAgo)
	req.AddFacet("created_at", created)

	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve facets: %w", err)
	}

	facets := &models.Facets{
		EntityTypes: make(map[string]int),
		Keywords:    make(map[string]int),
	}
	if f, ok := results.Facets["entity_types"]; ok && f.Terms != nil {
		for _, t := range f.Terms.Terms() {
			facets.EntityTypes[t.Term] = t.Count
		}
	}
	if f, ok := results.Facets["keywords"]; ok && f.Terms != nil {
		for _, t := range f.Terms.Terms() {
			facets.Keywords[t.Term] = t.Count
		}
	}
	if f, ok := results.Facets["created_at"]; ok {
		for _, dr := range f.DateRanges {
			bucket := models.DateRangeCount{Name: dr.Name, Count: dr.Count}
			if dr.Start != nil {
				if start, perr := time.Parse(time.RFC3339, *dr.Start); perr == nil {
					bucket.Start = &start
				}
			}
			if dr.End != nil {
				if end, perr := time.Parse(time.RFC3339, *dr.End); perr == nil {
					bucket.End = &end
				}
			}
			facets.CreatedAt = append(facets.CreatedAt, bucket)
		}
		sort.Slice(facets.CreatedAt, func(i, j int) bool {
			return facets.CreatedAt[i].Name < facets.CreatedAt[j].Name
		})
	}
	return facets, nil
}

// Delete removes the document stored under key.
func (b *BleveIndex) Delete(ctx context.Context, key string) error {
	return b.index.Delete(key)
}

// DocCount returns the number of indexed documents across all tenants.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the underlying bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

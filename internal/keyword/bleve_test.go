package keyword

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lexfold/lexfold/internal/models"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func testDoc(tenant string, entityType models.EntityType, id, title, content string, keywords ...string) *models.SearchDocument {
	now := time.Now()
	return &models.SearchDocument{
		TenantID:   tenant,
		EntityType: entityType,
		EntityID:   id,
		Title:      title,
		Content:    content,
		Keywords:   keywords,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestBleveIndexSearchFindsContent(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	doc := testDoc("acme", models.EntityContract, "c1",
		"Master Services Agreement",
		"Either party may terminate this agreement with thirty days written notice.",
		"termination")
	if err := idx.Index(ctx, doc); err != nil {
		t.Fatalf("Index: %v", err)
	}

	results, err := idx.Search(ctx, "acme", "terminate", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected a hit for content term")
	}
	if results[0].Key != doc.Key() {
		t.Errorf("key = %q, want %q", results[0].Key, doc.Key())
	}
}

func TestBleveIndexTenantIsolation(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	idx.Index(ctx, testDoc("acme", models.EntityContract, "c1", "Acme NDA", "confidential information"))
	idx.Index(ctx, testDoc("globex", models.EntityContract, "c2", "Globex NDA", "confidential information"))
	idx.Index(ctx, testDoc("", models.EntityClause, "cl1", "Standard Confidentiality Clause", "confidential information"))

	results, err := idx.Search(ctx, "acme", "confidential", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	keys := make(map[string]bool)
	for _, r := range results {
		keys[r.Key] = true
	}
	if !keys["acme|contract|c1"] {
		t.Error("tenant should see own document")
	}
	if !keys["|clause|cl1"] {
		t.Error("tenant should see global document")
	}
	if keys["globex|contract|c2"] {
		t.Error("tenant must not see another tenant's document")
	}

	// Empty tenant sees only globals.
	globalResults, err := idx.Search(ctx, "", "confidential", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(globalResults) != 1 || globalResults[0].Key != "|clause|cl1" {
		t.Errorf("global view = %v", globalResults)
	}
}

func TestBleveIndexTitleBoost(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	idx.Index(ctx, testDoc("acme", models.EntityContract, "title-hit",
		"Indemnification Agreement", "general provisions apply"))
	idx.Index(ctx, testDoc("acme", models.EntityContract, "body-hit",
		"Exhibit B", "the indemnification obligations survive termination"))

	results, err := idx.Search(ctx, "acme", "indemnification", 10, &SearchOptions{TitleBoost: 2.0})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Key != "acme|contract|title-hit" {
		t.Errorf("title match should rank first, got %s", results[0].Key)
	}
}

func TestBleveIndexEntityTypeFilter(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	idx.Index(ctx, testDoc("acme", models.EntityContract, "c1", "Payment Agreement", "net thirty payment terms"))
	idx.Index(ctx, testDoc("acme", models.EntityClause, "cl1", "Payment Clause", "net thirty payment terms"))

	results, err := idx.Search(ctx, "acme", "payment", 10, &SearchOptions{EntityType: models.EntityClause})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Key != "acme|clause|cl1" {
		t.Errorf("got %v", results)
	}
}

func TestBleveIndexReplaceIsIdempotent(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	idx.Index(ctx, testDoc("acme", models.EntityContract, "c1", "Old Title", "old content"))
	idx.Index(ctx, testDoc("acme", models.EntityContract, "c1", "New Title", "new content"))

	count, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	old, _ := idx.Search(ctx, "acme", "old", 10, nil)
	if len(old) != 0 {
		t.Error("stale version still searchable")
	}
}

func TestBleveIndexDelete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	doc := testDoc("acme", models.EntityContract, "c1", "NDA", "confidential")
	idx.Index(ctx, doc)
	if err := idx.Delete(ctx, doc.Key()); err != nil {
		t.Fatal(err)
	}
	results, _ := idx.Search(ctx, "acme", "confidential", 10, nil)
	if len(results) != 0 {
		t.Error("deleted document still searchable")
	}
}

func TestBleveIndexSuggest(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	idx.Index(ctx, testDoc("acme", models.EntityContract, "c1", "Termination Agreement", "body", "termination"))
	idx.Index(ctx, testDoc("acme", models.EntityClause, "cl1", "Termination Clause", "body", "termination"))
	idx.Index(ctx, testDoc("acme", models.EntityContract, "c3", "Payment Agreement", "body", "terminology"))
	idx.Index(ctx, testDoc("globex", models.EntityContract, "c2", "Terms of Service", "body"))

	suggestions, err := idx.Suggest(ctx, "acme", "term", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	seen := make(map[string]bool)
	for _, s := range suggestions {
		if seen[s] {
			t.Errorf("duplicate suggestion %q", s)
		}
		seen[s] = true
		if s == "Terms of Service" {
			t.Error("suggestion leaked from another tenant")
		}
		if !strings.HasPrefix(strings.ToLower(s), "term") {
			t.Errorf("suggestion %q does not complete the prefix", s)
		}
	}
	if seen["termination"] || seen["terminology"] {
		t.Error("keyword terms must not surface as suggestions, only titles")
	}

	none, err := idx.Suggest(ctx, "acme", "zzz", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("got %v", none)
	}
}

func TestBleveIndexFacets(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	idx.Index(ctx, testDoc("acme", models.EntityContract, "c1", "NDA One", "body", "confidentiality"))
	idx.Index(ctx, testDoc("acme", models.EntityContract, "c2", "NDA Two", "body", "confidentiality", "liability"))
	idx.Index(ctx, testDoc("acme", models.EntityClause, "cl1", "Clause", "body", "liability"))
	idx.Index(ctx, testDoc("globex", models.EntityContract, "x1", "Other", "body", "insurance"))

	facets, err := idx.Facets(ctx, "acme")
	if err != nil {
		t.Fatal(err)
	}
	if facets.EntityTypes["contract"] != 2 {
		t.Errorf("contract count = %d, want 2", facets.EntityTypes["contract"])
	}
	if facets.EntityTypes["clause"] != 1 {
		t.Errorf("clause count = %d, want 1", facets.EntityTypes["clause"])
	}
	if facets.Keywords["confidentiality"] != 2 {
		t.Errorf("confidentiality count = %d, want 2", facets.Keywords["confidentiality"])
	}
	if _, leaked := facets.Keywords["insurance"]; leaked {
		t.Error("facets leaked another tenant's keywords")
	}

	var recent int
	for _, bucket := range facets.CreatedAt {
		recent += bucket.Count
	}
	if recent != 3 {
		t.Errorf("date buckets total %d, want 3", recent)
	}
}

func TestBleveIndexReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bleve")
	ctx := context.Background()

	idx, err := NewBleveIndex(dir)
	if err != nil {
		t.Fatal(err)
	}
	idx.Index(ctx, testDoc("acme", models.EntityContract, "c1", "NDA", "confidential"))
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewBleveIndex(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	results, err := reopened.Search(ctx, "acme", "confidential", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results after reopen", len(results))
	}
}

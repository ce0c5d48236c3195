package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/lexfold/lexfold/internal/config"
	"github.com/lexfold/lexfold/internal/embedding"
	"github.com/lexfold/lexfold/internal/extract"
	"github.com/lexfold/lexfold/internal/filetext"
	"github.com/lexfold/lexfold/internal/index"
	"github.com/lexfold/lexfold/internal/keyword"
	"github.com/lexfold/lexfold/internal/models"
	"github.com/lexfold/lexfold/internal/redact"
	"github.com/lexfold/lexfold/internal/schema"
	"github.com/lexfold/lexfold/internal/search"
	"github.com/lexfold/lexfold/internal/storage"
	"github.com/lexfold/lexfold/internal/templates"
	"github.com/lexfold/lexfold/internal/vector"
)

const ndaTemplate = `# Party Information
Disclosing Party: [Company Name]
Receiving Party: [Company Name]

# Terms
Effective Date: [Date]
`

type fixture struct {
	server  *httptest.Server
	deps    Deps
	tmplDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	tmplDir := t.TempDir()
	cfg.Templates.Directory = tmplDir

	db, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "lexfold.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	kw, err := keyword.NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kw.Close() })

	embedder := embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	vectors, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions)
	if err != nil {
		t.Fatal(err)
	}

	catalog := index.NewCatalog()
	jobs := index.NewJobPool(2, logger)
	t.Cleanup(jobs.Close)
	indexer := index.NewIndexer(catalog, kw, vectors, embedder, logger, index.WithJobPool(jobs))
	engine := search.NewEngine(catalog, kw, vectors, embedder, &cfg.Search, logger)
	tmplStore := templates.NewStore(tmplDir, cfg.Templates.Extensions, db, schema.NewEngine(schema.Config{
		RequiredSections: cfg.Schema.RequiredSections,
	}), logger)

	deps := Deps{
		Config:    cfg,
		Logger:    logger,
		Templates: tmplStore,
		Extractor: extract.NewEngine(cfg.Extraction),
		Redactor:  redact.NewEngine(),
		Converter: filetext.NewConverter(),
		Storage:   db,
		Indexer:   indexer,
		Catalog:   catalog,
		Vectors:   vectors,
		Jobs:      jobs,
		Search:    engine,
	}
	srv := httptest.NewServer(NewServer(deps).Router())
	t.Cleanup(srv.Close)
	return &fixture{server: srv, deps: deps, tmplDir: tmplDir}
}

func (f *fixture) request(t *testing.T, method, path, tenant string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if tenant != "" {
		req.Header.Set("X-Tenant-ID", tenant)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp, body := f.request(t, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("status %d body %v", resp.StatusCode, body)
	}
}

func TestTemplateSchemaEndpoint(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(filepath.Join(f.tmplDir, "Mutual_NDA.txt"), []byte(ndaTemplate), 0600); err != nil {
		t.Fatal(err)
	}

	resp, body := f.request(t, http.MethodGet, "/api/v1/templates/Mutual_NDA.txt/schema", "acme", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
	if body["success"] != true || body["template_type"] != "NDA" {
		t.Errorf("body = %v", body)
	}
	sections, ok := body["sections"].([]interface{})
	if !ok || len(sections) != 2 {
		t.Errorf("sections = %v", body["sections"])
	}

	resp, _ = f.request(t, http.MethodGet, "/api/v1/templates/absent.txt/schema", "acme", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing template status = %d", resp.StatusCode)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(filepath.Join(f.tmplDir, "Mutual_NDA.txt"), []byte(ndaTemplate), 0600); err != nil {
		t.Fatal(err)
	}

	resp, body := f.request(t, http.MethodPost, "/api/v1/contracts/generate", "acme", map[string]interface{}{
		"filename": "Mutual_NDA.txt",
		"structured_inputs": map[string]string{
			"disclosing_party": "Acme Corp Inc.",
			"effective_date":   "2026-09-01",
		},
		"custom_clauses": []map[string]string{
			{"title": "Audit Rights", "content": "Either party may audit."},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
	text, _ := body["rendered_text"].(string)
	if !strings.Contains(text, "Disclosing Party: Acme Corp Inc.") {
		t.Errorf("substitution missing: %q", text)
	}
	if !strings.Contains(text, "ADDITIONAL CLAUSES & CONSTRAINTS") || !strings.Contains(text, "Audit Rights") {
		t.Errorf("extras block missing: %q", text)
	}
	unresolved, _ := body["unresolved_fields"].([]interface{})
	found := false
	for _, u := range unresolved {
		if u == "receiving_party" {
			found = true
		}
	}
	if !found {
		t.Errorf("unresolved = %v", unresolved)
	}
}

func TestExtractEndpoint(t *testing.T) {
	f := newFixture(t)
	text := "SERVICE AGREEMENT\n\nThis agreement is entered into as of January 15, 2026 between " +
		"Acme Corp Inc., a Delaware corporation, and Globex LLC.\n\n" +
		"1. Payment Terms\nClient shall pay $50,000 within thirty days of invoice.\n"

	resp, body := f.request(t, http.MethodPost, "/api/v1/contracts/extract", "acme", map[string]string{
		"text": text,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
	metadata, ok := body["metadata"].(map[string]interface{})
	if !ok {
		t.Fatalf("metadata = %v", body["metadata"])
	}
	parties, _ := metadata["parties"].([]interface{})
	if len(parties) == 0 {
		t.Error("no parties extracted")
	}
	if metadata["contract_value"] == nil {
		t.Error("no contract value extracted")
	}
}

func TestRedactEndpoint(t *testing.T) {
	f := newFixture(t)
	resp, body := f.request(t, http.MethodPost, "/api/v1/redact", "acme", map[string]string{
		"text": "Contact legal@acme.example.com or 555-123-4567.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	text, _ := body["redacted_text"].(string)
	if strings.Contains(text, "legal@acme.example.com") {
		t.Error("email not redacted")
	}
	if !strings.Contains(text, "[REDACTED:EMAIL]") {
		t.Errorf("got %q", text)
	}
}

func TestSearchEndpointAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Persist and index a contract through the extract endpoint.
	resp, _ := f.request(t, http.MethodPost, "/api/v1/contracts/extract", "acme", map[string]string{
		"text":  "This agreement contains indemnification obligations for both parties.",
		"title": "Indemnification Agreement",
		"id":    "c1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("extract status %d", resp.StatusCode)
	}

	resp, body := f.request(t, http.MethodPost, "/api/v1/search", "acme", map[string]interface{}{
		"query": "indemnification",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search status %d: %v", resp.StatusCode, body)
	}
	if total, _ := body["total"].(float64); total < 1 {
		t.Errorf("total = %v", body["total"])
	}

	// A negative offset is clamped, not a server error.
	resp, body = f.request(t, http.MethodPost, "/api/v1/search", "acme", map[string]interface{}{
		"query":  "indemnification",
		"offset": -1,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("negative offset status %d: %v", resp.StatusCode, body)
	}
	if total, _ := body["total"].(float64); total < 1 {
		t.Errorf("negative offset total = %v", body["total"])
	}

	// Invalid hybrid weights are a client error.
	resp, _ = f.request(t, http.MethodPost, "/api/v1/search", "acme", map[string]interface{}{
		"query":   "indemnification",
		"mode":    "hybrid",
		"weights": map[string]float64{"full_text": 0.9, "semantic": 0.9},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid weights status = %d", resp.StatusCode)
	}

	resp, _ = f.request(t, http.MethodDelete, "/api/v1/documents/contract/c1", "acme", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	if f.deps.Catalog.Len() != 0 {
		t.Error("catalog entry survived delete")
	}
	if _, err := f.deps.Storage.GetContract(ctx, "acme", "c1"); err == nil {
		t.Error("contract survived delete")
	}

	resp, _ = f.request(t, http.MethodDelete, "/api/v1/documents/widget/c1", "acme", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown entity type status = %d", resp.StatusCode)
	}
}

func TestUploadEndpoint(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "agreement.txt")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(fw, "CONSULTING AGREEMENT\n\nTermination: either party may terminate with thirty days notice.")
	mw.WriteField("title", "Consulting Agreement")
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/v1/contracts/upload", &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Tenant-ID", "acme")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatal("no id returned")
	}

	// Background extraction and indexing should land shortly.
	key := models.DocumentKey("acme", models.EntityContract, id)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := f.deps.Catalog.Get(key); ok {
			contract, err := f.deps.Storage.GetContract(context.Background(), "acme", id)
			if err != nil {
				t.Fatal(err)
			}
			if contract.Metadata == nil {
				t.Fatal("metadata not attached")
			}
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("uploaded contract never indexed")
}

func TestSuggestRequiresQuery(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.request(t, http.MethodGet, "/api/v1/search/suggest", "acme", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	f := newFixture(t)
	resp, body := f.request(t, http.MethodGet, "/api/v1/status", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if _, ok := body["documents"]; !ok {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["config"]; !ok {
		t.Errorf("config missing: %v", body)
	}
}

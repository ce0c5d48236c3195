// Package main is the Lexfold CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lexfold/lexfold/internal/cli"
	"github.com/lexfold/lexfold/internal/config"
	"github.com/lexfold/lexfold/internal/embedding"
	"github.com/lexfold/lexfold/internal/extract"
	"github.com/lexfold/lexfold/internal/filetext"
	"github.com/lexfold/lexfold/internal/index"
	"github.com/lexfold/lexfold/internal/keyword"
	"github.com/lexfold/lexfold/internal/models"
	"github.com/lexfold/lexfold/internal/redact"
	"github.com/lexfold/lexfold/internal/render"
	"github.com/lexfold/lexfold/internal/schema"
	"github.com/lexfold/lexfold/internal/search"
	"github.com/lexfold/lexfold/internal/server"
	"github.com/lexfold/lexfold/internal/storage"
	"github.com/lexfold/lexfold/internal/templates"
	"github.com/lexfold/lexfold/internal/vector"
	"github.com/lexfold/lexfold/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/lexfold/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "lexfold server" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "schema", "infer":
		runSchema()
	case "generate", "render":
		runGenerate()
	case "extract":
		runExtract()
	case "redact":
		runRedact()
	case "index":
		runIndexCmd()
	case "search":
		runSearch()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("lexfold version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Templates.Watch {
		watch := templates.NewWatcher(components.Templates, logger)
		if err := watch.Start(watchCtx); err != nil {
			logger.Warn("template watcher unavailable", zap.Error(err))
		} else {
			defer watch.Stop()
		}
	}

	srv := server.NewServer(server.Deps{
		Config:    cfg,
		Logger:    logger,
		Templates: components.Templates,
		Extractor: components.Extractor,
		Redactor:  components.Redactor,
		Converter: components.Converter,
		Storage:   components.Storage,
		Indexer:   components.Indexer,
		Catalog:   components.Catalog,
		Vectors:   components.VectorIndex,
		Jobs:      components.Jobs,
		Search:    components.Engine,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if cfg.Storage.VectorIndexPath != "" {
		if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index save failed", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runSchema() {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	tenant := fs.String("tenant", "", "tenant ID (empty = global)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: lexfold schema [flags] <template-filename>")
		os.Exit(1)
	}
	filename := fs.Arg(0)

	components := mustInitialize(*configPath)
	defer components.Close()

	ts, err := components.Templates.Schema(context.Background(), *tenant, filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Schema inference failed: %v\n", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ts); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// parseInputs turns positional "key=value" arguments into structured inputs.
// Arguments without an equals sign are rejected.
func parseInputs(args []string) (map[string]string, error) {
	inputs := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		inputs[k] = v
	}
	return inputs, nil
}

func runGenerate() {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	tenant := fs.String("tenant", "", "tenant ID (empty = global)")
	clauses := fs.String("clauses", "", "comma-separated stored clause IDs to append")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: lexfold generate [flags] <template-filename> [key=value ...]")
		os.Exit(1)
	}
	filename := fs.Arg(0)
	inputs, err := parseInputs(fs.Args()[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid input: %v\n", err)
		os.Exit(1)
	}

	components := mustInitialize(*configPath)
	defer components.Close()

	ctx := context.Background()
	ts, err := components.Templates.RenderSchema(ctx, *tenant, filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Template load failed: %v\n", err)
		os.Exit(1)
	}

	req := &models.RenderRequest{StructuredInputs: inputs}
	if *clauses != "" {
		req.SelectedClauses = strings.Split(*clauses, ",")
	}
	renderer := render.NewEngine(clauseLibrary(components.Storage, *tenant))
	result, err := renderer.Render(ctx, ts, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rendering failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(result.RenderedText)
	if len(result.Unresolved) > 0 {
		fmt.Fprintf(os.Stderr, "\nWarning: unresolved required fields: %s\n", strings.Join(result.Unresolved, ", "))
	}
}

// storageClauses resolves clause IDs against tenant-scoped storage.
type storageClauses struct {
	store    storage.Storage
	tenantID string
}

func (c *storageClauses) GetClause(ctx context.Context, clauseID string) (string, error) {
	clause, err := c.store.GetClause(ctx, c.tenantID, clauseID)
	if err != nil {
		return "", err
	}
	return clause.Content, nil
}

func clauseLibrary(store storage.Storage, tenantID string) render.ClauseLibrary {
	return &storageClauses{store: store, tenantID: tenantID}
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: lexfold extract [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	components := mustInitialize(*configPath)
	defer components.Close()

	text, err := components.Converter.FromFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conversion failed: %v\n", err)
		os.Exit(1)
	}
	metadata := components.Extractor.Extract(text)
	if err := cli.WriteMetadata(os.Stdout, metadata, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runRedact() {
	fs := flag.NewFlagSet("redact", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: lexfold redact [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	components := mustInitialize(*configPath)
	defer components.Close()

	text, err := components.Converter.FromFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conversion failed: %v\n", err)
		os.Exit(1)
	}
	redacted, counts := components.Redactor.Redact(text)
	fmt.Println(redacted)
	if len(counts) > 0 {
		fmt.Fprintf(os.Stderr, "\nRedacted:")
		for category, n := range counts {
			fmt.Fprintf(os.Stderr, " %s=%d", category, n)
		}
		fmt.Fprintln(os.Stderr)
	}
}

func runIndexCmd() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	tenant := fs.String("tenant", "", "tenant ID (empty = global)")
	title := fs.String("title", "", "document title (defaults to filename)")
	id := fs.String("id", "", "contract ID (defaults to the filename stem)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: lexfold index [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	components := mustInitialize(*configPath)
	defer components.Close()

	text, err := components.Converter.FromFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conversion failed: %v\n", err)
		os.Exit(1)
	}
	docTitle := *title
	if docTitle == "" {
		docTitle = filepath.Base(path)
	}
	docID := *id
	if docID == "" {
		base := filepath.Base(path)
		docID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ctx := context.Background()
	metadata := components.Extractor.Extract(text)
	contract := &models.Contract{
		ID:       docID,
		TenantID: *tenant,
		Title:    docTitle,
		Text:     text,
		Metadata: metadata,
	}
	if err := components.Storage.SaveContract(ctx, contract); err != nil {
		fmt.Fprintf(os.Stderr, "Save failed: %v\n", err)
		os.Exit(1)
	}
	if err := components.Indexer.IndexDocument(ctx, &models.SearchDocument{
		TenantID:   *tenant,
		EntityType: models.EntityContract,
		EntityID:   docID,
		Title:      docTitle,
		Content:    text,
		Keywords:   metadata.IdentifiedClauses,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Indexing failed: %v\n", err)
		os.Exit(1)
	}
	if cfgPath := components.Config.Storage.VectorIndexPath; cfgPath != "" {
		if err := components.VectorIndex.Save(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: vector index save failed: %v\n", err)
		}
	}
	fmt.Printf("Contract indexed: %s\n", models.DocumentKey(*tenant, models.EntityContract, docID))
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the
// query to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	tenant := fs.String("tenant", "", "tenant ID (empty = global)")
	mode := fs.String("mode", "", "search mode: hybrid, lexical (alias full_text), or semantic (default from config)")
	limit := fs.Int("limit", 0, "number of results (default from config)")
	offset := fs.Int("offset", 0, "result offset for pagination")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		fmt.Println("Usage: lexfold search [flags] <query>")
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		fmt.Println("Usage: lexfold search [flags] <query>")
		os.Exit(1)
	}

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	searchQuery := &models.SearchQuery{
		Query:  queryStr,
		Mode:   models.SearchMode(*mode),
		Limit:  *limit,
		Offset: *offset,
	}

	if *serverURL != "" {
		// Use the HTTP API when the server is running (avoids Bleve/SQLite
		// lock conflicts).
		response, err := searchViaHTTP(*serverURL, *tenant, searchQuery)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	components := mustInitialize(*configPath)
	defer components.Close()

	response, err := components.Engine.Query(context.Background(), *tenant, searchQuery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, tenant string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if tenant != "" {
		req.Header.Set("X-Tenant-ID", tenant)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	tenant := fs.String("tenant", "", "tenant ID (empty = global)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 2 {
		fmt.Println("Usage: lexfold delete [flags] <entity-type> <id>")
		os.Exit(1)
	}
	entityType := models.EntityType(fs.Arg(0))
	docID := fs.Arg(1)
	if entityType != models.EntityContract && entityType != models.EntityClause {
		fmt.Fprintf(os.Stderr, "Unknown entity type %q; use contract or clause\n", entityType)
		os.Exit(1)
	}

	components := mustInitialize(*configPath)
	defer components.Close()

	ctx := context.Background()
	if err := components.Indexer.Delete(ctx, *tenant, entityType, docID); err != nil {
		fmt.Fprintf(os.Stderr, "Deletion failed: %v\n", err)
		os.Exit(1)
	}
	if entityType == models.EntityContract {
		if err := components.Storage.DeleteContract(ctx, *tenant, docID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Deletion failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("Document deleted: %s\n", models.DocumentKey(*tenant, entityType, docID))
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Documents       uint64                 `json:"documents"`
	CatalogSize     int                    `json:"catalog_size"`
	VectorIndexSize int                    `json:"vector_index_size"`
	PendingJobs     int                    `json:"pending_jobs"`
	Config          map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		components := mustInitialize(*configPath)
		defer components.Close()
		docCount, err := components.Engine.DocCount()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Document count failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Documents:       docCount,
			CatalogSize:     components.Catalog.Len(),
			VectorIndexSize: components.VectorIndex.Size(),
			PendingJobs:     components.Jobs.Pending(),
			Config: map[string]interface{}{
				"embedding_dimensions": components.Config.Embedding.Dimensions,
				"full_text_weight":     components.Config.Search.FullTextWeight,
				"semantic_weight":      components.Config.Search.SemanticWeight,
				"template_directory":   components.Config.Templates.Directory,
			},
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("documents:          %d   # count of indexed documents\n", status.Documents)
		fmt.Printf("catalog_size:       %d   # documents held in memory\n", status.CatalogSize)
		fmt.Printf("vector_index_size:  %d   # count of vectors in semantic index\n", status.VectorIndexSize)
		fmt.Printf("pending_jobs:       %d   # queued background extractions\n", status.PendingJobs)
		if len(status.Config) > 0 {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{"embedding_dimensions", "full_text_weight", "semantic_weight", "template_directory"} {
				if v, ok := status.Config[key]; ok {
					fmt.Printf("%-20s%v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Config      *config.Config
	Storage     storage.Storage
	Embedder    embedding.Embedder
	VectorIndex vector.Index
	Keyword     keyword.Index
	Catalog     *index.Catalog
	Jobs        *index.JobPool
	Indexer     *index.Indexer
	Engine      *search.Engine
	Templates   *templates.Store
	Extractor   *extract.Engine
	Redactor    *redact.Engine
	Converter   *filetext.Converter
}

func (c *Components) Close() {
	if c.Jobs != nil {
		c.Jobs.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
	if c.Keyword != nil {
		_ = c.Keyword.Close()
	}
}

// mustInitialize loads config, builds a logger, and wires all components,
// exiting on any failure. Used by the one-shot subcommands.
func mustInitialize(configPath string) *Components {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var embedder embedding.Embedder
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		logger.Warn("ONNX embedder unavailable, using deterministic fallback", zap.Error(err))
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = onnxEmbedder
	}

	vectorIndex, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	if cfg.Storage.VectorIndexPath != "" {
		if loadErr := vectorIndex.Load(cfg.Storage.VectorIndexPath); loadErr != nil {
			logger.Warn("vector index load skipped", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(loadErr))
		}
	}

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	catalog := index.NewCatalog()
	jobs := index.NewJobPool(cfg.Extraction.Workers, logger)
	indexer := index.NewIndexer(catalog, keywordIndex, vectorIndex, embedder, logger, index.WithJobPool(jobs))
	engine := search.NewEngine(catalog, keywordIndex, vectorIndex, embedder, &cfg.Search, logger)

	schemaEngine := schema.NewEngine(schema.Config{RequiredSections: cfg.Schema.RequiredSections})
	templateStore := templates.NewStore(cfg.Templates.Directory, cfg.Templates.Extensions, store, schemaEngine, logger)

	return &Components{
		Config:      cfg,
		Storage:     store,
		Embedder:    embedder,
		VectorIndex: vectorIndex,
		Keyword:     keywordIndex,
		Catalog:     catalog,
		Jobs:        jobs,
		Indexer:     indexer,
		Engine:      engine,
		Templates:   templateStore,
		Extractor:   extract.NewEngine(cfg.Extraction),
		Redactor:    redact.NewEngine(),
		Converter:   filetext.NewConverter(),
	}, nil
}

func printUsage() {
	fmt.Println(`lexfold - Contract template intelligence and hybrid search

Usage:
  lexfold server [flags]                     Start the HTTP server
  lexfold schema [flags] <template>          Infer and print a template schema
  lexfold generate [flags] <template> [k=v]  Render a contract from a template
  lexfold extract [flags] <file>             Extract contract metadata
  lexfold redact [flags] <file>              Redact PII from a document
  lexfold index [flags] <file>               Extract, persist, and index a contract
  lexfold search [flags] <query>             Search indexed documents
  lexfold delete [flags] <type> <id>         Delete a document (contract or clause)
  lexfold status [flags]                     Show engine/storage/index status
  lexfold version                            Show version
  lexfold help                               Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/lexfold/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --tenant string    Tenant ID (empty = global scope)
  --mode string      Search mode: hybrid, lexical (alias full_text), or semantic
  --limit int        Number of results
  --offset int       Result offset for pagination
  --output string    Output format: text, compact, or json (default: text)

Examples:
  lexfold server
  lexfold schema Mutual_NDA.txt
  lexfold generate Mutual_NDA.txt disclosing_party="Acme Corp" effective_date=2026-09-01
  lexfold extract contract.pdf
  lexfold redact --config config.yaml draft.docx
  lexfold index --tenant acme --title "Master Services Agreement" msa.txt
  lexfold search --tenant acme "termination for convenience"
  lexfold search --output json "indemnification"
  lexfold delete contract msa
  lexfold status --output json`)
}

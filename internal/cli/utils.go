// Package cli provides CLI output utilities for lexfold.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/lexfold/lexfold/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one result per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates an -output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputCompact, OutputJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		writeSearchResultsCompact(w, response)
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms\n", response.Total, response.QueryTime)
	if response.Degraded {
		fmt.Fprintln(w, "(semantic scoring unavailable; lexical results only)")
	}
	fmt.Fprintln(w)
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
}

func writeOneResult(w io.Writer, result *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.4f (Lexical: %.4f, Semantic: %.4f)\n",
		result.Rank, result.Score, result.LexicalScore, result.SemanticScore)
	doc := result.Document
	fmt.Fprintf(w, "ID: %s [%s]\n", doc.EntityID, doc.EntityType)
	if doc.TenantID != "" {
		fmt.Fprintf(w, "Tenant: %s\n", doc.TenantID)
	}
	if doc.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", doc.Title)
	}
	if len(doc.Keywords) > 0 {
		fmt.Fprintf(w, "Keywords: %s\n", strings.Join(doc.Keywords, ", "))
	}
	fmt.Fprintf(w, "\n%s\n", Truncate(doc.Content, 200))
	fmt.Fprintln(w)
}

func writeSearchResultsCompact(w io.Writer, response *models.SearchResponse) {
	for _, result := range response.Results {
		doc := result.Document
		title := doc.Title
		if title == "" {
			title = Truncate(doc.Content, 60)
		}
		fmt.Fprintf(w, "%d\t%.4f\t%s/%s\t%s\n", result.Rank, result.Score, doc.EntityType, doc.EntityID, title)
	}
}

// WriteMetadata writes extracted contract metadata to w in the given format.
func WriteMetadata(w io.Writer, metadata *models.ExtractedMetadata, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(metadata)
	}
	if len(metadata.Parties) > 0 {
		fmt.Fprintf(w, "Parties:           %s\n", strings.Join(metadata.Parties, "; "))
	}
	if metadata.ContractValue != nil {
		fmt.Fprintf(w, "Contract value:    %.2f %s\n", *metadata.ContractValue, metadata.Currency)
	}
	if metadata.EffectiveDate != nil {
		fmt.Fprintf(w, "Effective date:    %s\n", metadata.EffectiveDate.Format("2006-01-02"))
	}
	if metadata.ExpirationDate != nil {
		fmt.Fprintf(w, "Expiration date:   %s\n", metadata.ExpirationDate.Format("2006-01-02"))
	}
	if len(metadata.IdentifiedClauses) > 0 {
		fmt.Fprintf(w, "Clauses:           %s\n", strings.Join(metadata.IdentifiedClauses, ", "))
	}
	if metadata.RiskScore != nil {
		fmt.Fprintf(w, "Risk score:        %d\n", *metadata.RiskScore)
	}
	if metadata.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", metadata.Summary)
	}
	return nil
}

// Truncate truncates s to at most maxLen bytes and appends "..." if
// truncated, backing up to a rune boundary so multi-byte characters stay intact.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

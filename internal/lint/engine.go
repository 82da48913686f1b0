package lint

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/latticehq/lattice/internal/document"
	"github.com/latticehq/lattice/internal/index"
)

// ExecuteRules runs every rule against every indexed document, per spec
// 4.8's "lint runs over the whole index unless narrowed by path prefix".
func ExecuteRules(ctx context.Context, lctx *Context, rules []Rule, cfg Config) (Summary, error) {
	all, err := index.List(ctx, lctx.Queryer, index.DocumentFilter{})
	if err != nil {
		return Summary{}, err
	}

	var filtered []index.DocumentRow
	for _, row := range all {
		if cfg.PathPrefix == "" || strings.HasPrefix(row.Path, cfg.PathPrefix) {
			filtered = append(filtered, *row)
		}
	}

	return ExecuteRulesOnDocuments(ctx, lctx, rules, cfg, filtered)
}

// ExecuteRulesOnDocuments runs rules against a pre-selected set of
// documents, loading each document's body from disk only if some rule
// in the set requires it.
func ExecuteRulesOnDocuments(ctx context.Context, lctx *Context, rules []Rule, cfg Config, rows []index.DocumentRow) (Summary, error) {
	summary := Summary{DocumentsChecked: len(rows)}
	if len(rules) == 0 {
		return summary, nil
	}

	anyNeedsBody := false
	for _, r := range rules {
		if r.RequiresBody() {
			anyNeedsBody = true
			break
		}
	}

	affected := map[string]bool{}
	for _, row := range rows {
		doc := loadLintDocument(lctx, row, anyNeedsBody)
		results := checkDocumentWithRules(ctx, doc, lctx, rules)

		for _, result := range results {
			if cfg.ErrorsOnly && !result.Severity.IsError() {
				continue
			}
			affected[result.Path] = true
			if result.Severity.IsError() {
				summary.ErrorCount++
			} else {
				summary.WarningCount++
			}
			summary.Results = append(summary.Results, result)
		}
	}

	summary.AffectedDocuments = len(affected)
	return summary, nil
}

// ExecuteRulesOnPath runs rules against a single document, identified by
// its repository-relative path.
func ExecuteRulesOnPath(ctx context.Context, lctx *Context, rules []Rule, cfg Config, path string) (Summary, error) {
	row, err := index.GetDocumentByPath(ctx, lctx.Queryer, path)
	if err != nil {
		return Summary{}, nil
	}
	return ExecuteRulesOnDocuments(ctx, lctx, rules, cfg, []index.DocumentRow{*row})
}

func loadLintDocument(lctx *Context, row index.DocumentRow, loadBody bool) Document {
	if !loadBody {
		return Document{Row: row}
	}

	fullPath := filepath.Join(lctx.RepoRoot, row.Path)
	raw, err := os.ReadFile(fullPath)
	if err != nil {
		return Document{Row: row, ReadErr: err}
	}
	parsed, err := document.Parse(fullPath, raw)
	if err != nil {
		return Document{Row: row, ReadErr: err}
	}
	return Document{Row: row, Parsed: parsed}
}

func checkDocumentWithRules(ctx context.Context, doc Document, lctx *Context, rules []Rule) []Result {
	var results []Result
	for _, rule := range rules {
		if rule.RequiresBody() && doc.Parsed == nil {
			continue
		}
		results = append(results, rule.Check(ctx, doc, lctx)...)
	}
	return results
}

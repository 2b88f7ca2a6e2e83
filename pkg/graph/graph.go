// Package graph builds document knowledge graphs: it chunks a document's
// pages, extracts entities and relationships per chunk through the prompt
// executor, resolves identities across chunks, and replaces the stored
// graph for the document.
package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
	"github.com/CiZaii/ai-middle-platform/pkg/llm"
	"github.com/CiZaii/ai-middle-platform/pkg/logger"
	"github.com/CiZaii/ai-middle-platform/pkg/store"
)

// businessCodeKnowledgeGraph selects the prompt template and model
// endpoint used for graph extraction.
const businessCodeKnowledgeGraph = "kg"

const defaultMaxPromptTokens = 32000

// PromptExecutor runs one prompt for a business code against the
// configured model endpoints. *llm.Executor satisfies it.
type PromptExecutor interface {
	ExecuteStructured(ctx context.Context, businessCode string, prompt string, name string, description string, shape any) (string, error)
}

// Generator drives one document's graph build end to end. A single run is
// strictly sequential over chunks; concurrency across documents is the
// caller's concern.
type Generator struct {
	executor        PromptExecutor
	templates       llm.TemplateSource
	documents       store.DocumentStorage
	graphs          store.GraphStorage
	pagesPerRequest int
	tokenEncoder    string
	maxPromptTokens int
}

// NewGeneratorParams defines the configuration for creating a Generator.
//
// PagesPerRequest is the chunk window size in pages (default 3).
// TokenEncoder names the tiktoken encoding used for the prompt budget
// check; MaxPromptTokens is that budget (default 32000, warn only).
type NewGeneratorParams struct {
	Executor        PromptExecutor
	Templates       llm.TemplateSource
	Documents       store.DocumentStorage
	Graphs          store.GraphStorage
	PagesPerRequest int
	TokenEncoder    string
	MaxPromptTokens int
}

// NewGenerator creates a Generator from the given parameters.
func NewGenerator(params NewGeneratorParams) *Generator {
	pagesPerRequest := params.PagesPerRequest
	if pagesPerRequest <= 0 {
		pagesPerRequest = defaultPagesPerRequest
	}
	maxPromptTokens := params.MaxPromptTokens
	if maxPromptTokens <= 0 {
		maxPromptTokens = defaultMaxPromptTokens
	}
	return &Generator{
		executor:        params.Executor,
		templates:       params.Templates,
		documents:       params.Documents,
		graphs:          params.Graphs,
		pagesPerRequest: pagesPerRequest,
		tokenEncoder:    params.TokenEncoder,
		maxPromptTokens: maxPromptTokens,
	}
}

// Generate rebuilds the knowledge graph for one file. The previously
// stored graph is replaced wholesale, so rerunning after any failure is
// safe.
func (g *Generator) Generate(ctx context.Context, fileID string) error {
	doc, err := g.documents.GetFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("failed to load file %s: %w", fileID, err)
	}

	template, err := g.templates.ActiveTemplate(ctx, businessCodeKnowledgeGraph)
	if err != nil {
		return fmt.Errorf("failed to load prompt template for %s: %w", businessCodeKnowledgeGraph, err)
	}
	if strings.TrimSpace(template) == "" {
		return fmt.Errorf("no active prompt template configured for business code %s", businessCodeKnowledgeGraph)
	}

	chunks, totalPages, err := g.loadChunks(ctx, fileID)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		// Permanently empty files are not an error; retrying would never
		// produce content.
		logger.Warn("[Graph] File has no recognized content, nothing to extract", "file_id", fileID)
		return nil
	}

	logger.Info("[Graph] Processing document",
		"file_id", fileID,
		"total_pages", totalPages,
		"total_chunks", len(chunks),
	)

	results := make([]common.ChunkResult, 0, len(chunks))
	for i, chunk := range chunks {
		content := buildChunkContent(chunk)
		if strings.TrimSpace(content) == "" {
			continue
		}

		summary := pageSummary(chunk)
		prompt := buildPrompt(template, *doc, i+1, len(chunks), totalPages, summary, content)
		g.checkPromptBudget(prompt, summary)

		response, err := g.executor.ExecuteStructured(ctx, businessCodeKnowledgeGraph, prompt,
			"knowledge_graph_extraction",
			"Entities and relationships extracted from a document excerpt",
			extractionResponse{},
		)
		if err != nil {
			return fmt.Errorf("extraction failed for %s (%s): %w", fileID, summary, err)
		}

		data := parseExtraction(response, fileID)
		if data.Empty() {
			logger.Debug("[Graph] Chunk yielded no graph data", "file_id", fileID, "pages", summary)
			continue
		}
		results = append(results, common.ChunkResult{
			Pages: pageNumbers(chunk),
			Data:  data,
		})
	}

	merged := mergeChunkResults(results)
	logger.Info("[Graph] Extraction merged",
		"file_id", fileID,
		"entities", len(merged.Entities),
		"relationships", len(merged.Relationships),
	)

	if err := g.graphs.ReplaceDocumentGraph(ctx, *doc, merged); err != nil {
		return fmt.Errorf("failed to persist graph for %s: %w", fileID, err)
	}

	logger.Info("[Graph] Graph build completed", "file_id", fileID)
	return nil
}

// loadChunks partitions the file's recognized pages into windows. A file
// with no page records falls back to its whole recognized content as a
// single pageless chunk; a file with neither yields no chunks.
func (g *Generator) loadChunks(ctx context.Context, fileID string) ([][]common.PageRecord, int, error) {
	pages, err := g.documents.ListCompletedPages(ctx, fileID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load pages for %s: %w", fileID, err)
	}
	if len(pages) > 0 {
		return partitionPages(pages, g.pagesPerRequest), len(pages), nil
	}

	content, err := g.documents.FileContent(ctx, fileID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load content for %s: %w", fileID, err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, 0, nil
	}
	logger.Warn("[Graph] No page records, falling back to whole document", "file_id", fileID)
	return [][]common.PageRecord{{{PageIndex: 0, Text: content}}}, 0, nil
}

func (g *Generator) checkPromptBudget(prompt string, summary string) {
	if g.tokenEncoder == "" {
		return
	}
	enc, err := tiktoken.GetEncoding(g.tokenEncoder)
	if err != nil {
		logger.Debug("Unknown token encoding", "encoder", g.tokenEncoder, "err", err)
		return
	}
	tokens := len(enc.Encode(prompt, nil, nil))
	if tokens > g.maxPromptTokens {
		logger.Warn("[Graph] Prompt exceeds token budget",
			"pages", summary,
			"tokens", tokens,
			"budget", g.maxPromptTokens,
		)
	}
}

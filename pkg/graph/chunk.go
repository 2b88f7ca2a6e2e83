package graph

import (
	"fmt"
	"strings"

	"github.com/CiZaii/ai-middle-platform/pkg/common"
)

// defaultPagesPerRequest is the page window size for one extraction call.
const defaultPagesPerRequest = 3

// partitionPages splits ordered page records into contiguous windows of at
// most size pages, covering every input page exactly once in order. A nil
// or empty input yields no chunks.
func partitionPages(pages []common.PageRecord, size int) [][]common.PageRecord {
	if len(pages) == 0 {
		return nil
	}
	if size < 1 {
		size = 1
	}

	chunks := make([][]common.PageRecord, 0, (len(pages)+size-1)/size)
	for start := 0; start < len(pages); start += size {
		end := min(start+size, len(pages))
		chunks = append(chunks, pages[start:end])
	}
	return chunks
}

// buildChunkContent renders a page window into the text block submitted to
// the model. Every page gets a marker line so the model can attribute
// findings to page numbers.
func buildChunkContent(chunk []common.PageRecord) string {
	if len(chunk) == 0 {
		return ""
	}

	// A lone zero-index record is the whole-document fallback and gets no
	// page marker.
	if len(chunk) == 1 && chunk[0].PageIndex == 0 {
		return strings.TrimSpace(chunk[0].Text)
	}

	var builder strings.Builder
	for _, page := range chunk {
		fmt.Fprintf(&builder, "[Page %d]\n", page.PageIndex)
		text := strings.TrimSpace(page.Text)
		if text == "" {
			text = "(blank page)"
		}
		builder.WriteString(text)
		builder.WriteString("\n\n")
	}
	return strings.TrimSpace(builder.String())
}

// pageSummary is the human-readable page-range label for a chunk, used as
// a prompt variable.
func pageSummary(chunk []common.PageRecord) string {
	switch len(chunk) {
	case 0:
		return "whole document"
	case 1:
		if chunk[0].PageIndex == 0 {
			return "whole document"
		}
		return fmt.Sprintf("page %d", chunk[0].PageIndex)
	default:
		return fmt.Sprintf("pages %d-%d", chunk[0].PageIndex, chunk[len(chunk)-1].PageIndex)
	}
}

// pageNumbers lists the page indexes covered by a chunk, preserving order.
func pageNumbers(chunk []common.PageRecord) []int {
	if len(chunk) == 0 {
		return nil
	}
	numbers := make([]int, 0, len(chunk))
	for _, page := range chunk {
		if page.PageIndex == 0 {
			continue
		}
		numbers = append(numbers, page.PageIndex)
	}
	return numbers
}

// Package assembler joins processed documents into the combined body.
package assembler

import (
	"strings"

	"github.com/custodia-labs/pelagia/internal/core/domain"
)

// PageBreak is inserted between consecutive documents. It is a raw LaTeX
// block that pandoc passes through and other formats may translate.
const PageBreak = "\n```{=latex}\n\\newpage\n```\n"

// Assemble concatenates the documents in order with a page break between
// each pair. Documents contribute their text verbatim.
func Assemble(docs []domain.ProcessedDocument) string {
	parts := make([]string, 0, 2*len(docs))
	for i := range docs {
		if i > 0 {
			parts = append(parts, PageBreak)
		}
		parts = append(parts, docs[i].Text)
	}
	return strings.Join(parts, "\n")
}

// Split is the inverse of Assemble for bodies whose documents never
// contain PageBreak themselves.
func Split(body string) []string {
	if body == "" {
		return nil
	}
	return strings.Split(body, "\n"+PageBreak+"\n")
}

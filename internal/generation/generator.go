// Package generation produces natural-language answers from retrieved chunks through hosted LLMs.
package generation

import (
	"context"
	"strings"
)

// Generator answers a query from the given context passages.
type Generator interface {
	Generate(ctx context.Context, query string, contexts []string) (string, error)
	Name() string
}

const promptTemplate = `Answer the question using the context below.
If the answer is not in the context, say "Not found in documents".

Context:
%CONTEXT%

Question:
%QUERY%`

// BuildPrompt renders the answer prompt. Contexts are separated by a blank line, in retrieval order.
func BuildPrompt(query string, contexts []string) string {
	r := strings.NewReplacer("%CONTEXT%", strings.Join(contexts, "\n\n"), "%QUERY%", query)
	return r.Replace(promptTemplate)
}

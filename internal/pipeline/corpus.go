package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/orchidautomation/playbook-cli/internal/model"
)

const pageSeparator = "\n\n---\n\n"

// formatCorpus renders a page set as one document the model can cite from.
// Pages are ordered by URL so the rendered corpus is stable across runs,
// which also keeps the prompt cache key stable.
func formatCorpus(pages map[string]model.PageText) string {
	urls := make([]string, 0, len(pages))
	for u := range pages {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	parts := make([]string, 0, len(urls))
	for _, u := range urls {
		parts = append(parts, fmt.Sprintf("URL: %s\n\n%s", u, pages[u].Markdown))
	}
	return strings.Join(parts, pageSeparator)
}

// truncate caps prompt material at n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

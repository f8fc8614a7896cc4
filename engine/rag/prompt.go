package rag

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/template"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
)

// builtinTemplate is the fallback prompt used when no override file is
// configured or the file cannot be read.
const builtinTemplate = `You are a helpful assistant specializing in travel and attractions. The user has asked the following question:

User query:
"""{{.UserQuery}}"""

{{.ContextIntro}}

IMPORTANT: Use ONLY the attractions provided in the database information above to answer the user's query. Do not add additional attractions, locations, or destinations that are not listed in the database.

If the database contains relevant attractions, focus your answer exclusively on those. You may provide helpful context about the attractions (such as general travel tips or cultural information), but do not introduce new destinations or attractions that are not in the database.

If no relevant attractions were found in the database, you may provide a brief general answer, but clearly state that no specific attractions were found in the database.
`

// contextFraming opens the context block when records were retrieved.
const contextFraming = "Here are some relevant attractions from the database, ranked by similarity:"

// noContextNotice replaces the context block when retrieval came back empty.
const noContextNotice = "No relevant attractions were retrieved from the database. " +
	"Please answer based only on the user's query and your general knowledge about travel and attractions."

// contextRecord is one (identifier, rendered text) pair included in the prompt.
type contextRecord struct {
	ID   string
	Text string
}

// promptTemplate renders the final prompt from the user query and the
// selected context records.
type promptTemplate struct {
	tmpl *template.Template
}

type templateData struct {
	UserQuery    string
	ContextIntro string
}

// loadTemplate reads the override file at path, falling back to the built-in
// template when the file is missing or unreadable. A file that exists but
// does not parse is a configuration defect and fails loading.
func loadTemplate(path string, logger *slog.Logger) (*promptTemplate, error) {
	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			tmpl, perr := template.New("prompt").Parse(string(raw))
			if perr != nil {
				return nil, domain.ConfigErrorf("rag: parse prompt template %s: %v", path, perr)
			}
			logger.Info("loaded prompt template", "path", path)
			return &promptTemplate{tmpl: tmpl}, nil
		}
		logger.Warn("prompt template unavailable, using built-in", "path", path, "err", err)
	}

	return &promptTemplate{tmpl: template.Must(template.New("prompt").Parse(builtinTemplate))}, nil
}

// compose substitutes the query and the context introduction into the
// template and trims surrounding whitespace. An execution failure is a
// configuration defect, not a per-request condition.
func (p *promptTemplate) compose(query string, records []contextRecord) (string, error) {
	var sb strings.Builder
	if err := p.tmpl.Execute(&sb, templateData{
		UserQuery:    query,
		ContextIntro: contextIntro(records),
	}); err != nil {
		return "", domain.ConfigErrorf("rag: execute prompt template: %v", err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// contextIntro builds the context block: each record in order with its
// identifier header and a separator, or the no-context notice when empty.
func contextIntro(records []contextRecord) string {
	if len(records) == 0 {
		return noContextNotice
	}

	blocks := make([]string, len(records))
	for i, r := range records {
		blocks[i] = fmt.Sprintf("Attraction ID: %s\n%s\n---", r.ID, r.Text)
	}
	return contextFraming + "\n\n" + strings.Join(blocks, "\n\n")
}

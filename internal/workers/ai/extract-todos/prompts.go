package extracttodos

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"work-planner/internal/models"
)

type prompts struct {
	system    string
	templates map[models.Source]*template.Template
}

func newPrompts(cfg *Config) (*prompts, error) {
	p := &prompts{system: cfg.SystemPrompt, templates: map[models.Source]*template.Template{}}
	for src, s := range cfg.Sources {
		if !s.Enabled {
			continue
		}
		tmpl, err := template.New(string(src)).Option("missingkey=error").Parse(s.Prompt)
		if err != nil {
			return nil, fmt.Errorf("parse %s prompt: %w", src, err)
		}
		p.templates[src] = tmpl
	}
	return p, nil
}

// render joins the system prompt and the source prompt with a blank line.
func (p *prompts) render(src models.Source, data interface{}) (string, error) {
	tmpl, ok := p.templates[src]
	if !ok {
		return "", fmt.Errorf("no prompt for source %s", src)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", src, err)
	}
	if p.system == "" {
		return buf.String(), nil
	}
	return p.system + "\n\n" + buf.String(), nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func formatComments(comments []models.JiraComment) string {
	if len(comments) > jiraRecentComments {
		comments = comments[len(comments)-jiraRecentComments:]
	}
	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.Author, truncate(c.Body, jiraCommentLimit)))
	}
	return truncate(strings.Join(lines, "\n"), jiraCommentsLimit)
}

package emailreader

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

var (
	tagRe        = regexp.MustCompile(`(?s)<[^>]*>`)
	styleBlockRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// ExtractText returns the text/plain part of an RFC 5322 message, falling
// back to tag-stripped text/html. Attachments are ignored.
func ExtractText(raw []byte) (string, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse message: %w", err)
	}

	var plain, htmlBody string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if plain != "" || htmlBody != "" {
				break
			}
			return "", fmt.Errorf("read part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		b, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}
		switch ct {
		case "text/plain":
			if plain == "" {
				plain = string(b)
			}
		case "text/html":
			if htmlBody == "" {
				htmlBody = string(b)
			}
		}
	}

	if strings.TrimSpace(plain) != "" {
		return normalize(plain), nil
	}
	return normalize(StripHTML(htmlBody)), nil
}

// StripHTML removes markup and decodes entities.
func StripHTML(s string) string {
	s = styleBlockRe.ReplaceAllString(s, "")
	s = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "\n", "</div>", "\n").Replace(s)
	s = tagRe.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimSpace(blankLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

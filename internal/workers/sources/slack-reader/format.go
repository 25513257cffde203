package slackreader

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	userMentionRe  = regexp.MustCompile(`<@([A-Z0-9]+)(?:\|[^>]*)?>`)
	channelRefRe   = regexp.MustCompile(`<#[A-Z0-9]+\|([^>]+)>`)
	labelledLinkRe = regexp.MustCompile(`<(https?://[^|>]+)\|([^>]+)>`)
	bareLinkRe     = regexp.MustCompile(`<(https?://[^>]+)>`)
)

// CleanText renders Slack markup as readable text: user mentions become
// @name, channel references #name, and links "text (url)" or the bare url.
func CleanText(text string, users map[string]string) string {
	text = userMentionRe.ReplaceAllStringFunc(text, func(m string) string {
		id := userMentionRe.FindStringSubmatch(m)[1]
		if name, ok := users[id]; ok && name != "" {
			return "@" + name
		}
		return "@" + id
	})
	text = channelRefRe.ReplaceAllString(text, "#$1")
	text = labelledLinkRe.ReplaceAllString(text, "$2 ($1)")
	text = bareLinkRe.ReplaceAllString(text, "$1")
	text = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">").Replace(text)
	return strings.TrimSpace(text)
}

// ParseTS converts a Slack "seconds.micros" timestamp.
func ParseTS(ts string) (time.Time, error) {
	secs, frac, _ := strings.Cut(ts, ".")
	s, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	var micros int64
	if frac != "" {
		if len(frac) > 6 {
			frac = frac[:6]
		}
		for len(frac) < 6 {
			frac += "0"
		}
		micros, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Unix(s, micros*1000).UTC(), nil
}

// MessageLink builds a permalink for a message.
func MessageLink(workspaceURL, channelID, ts string) string {
	if workspaceURL == "" {
		return ""
	}
	return workspaceURL + "/archives/" + channelID + "/p" + strings.ReplaceAll(ts, ".", "")
}

package slackreader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	users := map[string]string{"U1": "alice"}
	tests := []struct{ in, want string }{
		{"hi <@U1>", "hi @alice"},
		{"hi <@U9>", "hi @U9"},
		{"see <#C1|general>", "see #general"},
		{"<https://x.io|docs> and <https://y.io>", "docs (https://x.io) and https://y.io"},
		{"a &lt;b&gt; &amp; c", "a <b> & c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in, users), tt.in)
	}
}

func TestParseTS(t *testing.T) {
	ts, err := ParseTS("1700000100.000200")
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1700000100, 200000).UTC(), ts)

	_, err = ParseTS("garbage")
	assert.Error(t, err)
}

func TestMessageLink(t *testing.T) {
	assert.Equal(t, "", MessageLink("", "C1", "1.2"))
	assert.Equal(t, "https://w.slack.com/archives/C1/p1700000100000200", MessageLink("https://w.slack.com", "C1", "1700000100.000200"))
}

package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUrgencyRank(t *testing.T) {
	assert.Equal(t, 0, UrgencyCritical.Rank())
	assert.Equal(t, 1, UrgencyHigh.Rank())
	assert.Equal(t, 2, UrgencyMedium.Rank())
	assert.Equal(t, 3, UrgencyLow.Rank())
	assert.Equal(t, 4, Urgency("someday").Rank())
}

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		raw   string
		want  Urgency
		known bool
	}{
		{"critical", UrgencyCritical, true},
		{" HIGH ", UrgencyHigh, true},
		{"Medium", UrgencyMedium, true},
		{"", UrgencyLow, false},
		{"urgent", UrgencyLow, false},
	}
	for _, tt := range tests {
		got, known := ParseUrgency(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.known, known, tt.raw)
	}
}

func TestDedupeKey(t *testing.T) {
	a := ActionItem{Source: SourceJira, Description: "Review  the PR"}
	b := ActionItem{Source: SourceJira, Description: "review the pr"}
	c := ActionItem{Source: SourceSlack, Description: "review the pr"}

	assert.Equal(t, a.DedupeKey(), b.DedupeKey())
	assert.NotEqual(t, a.DedupeKey(), c.DedupeKey())
}

func TestFailedSource(t *testing.T) {
	r := FailedSource(SourceEmail, errors.New("imap down"))
	assert.False(t, r.Success())
	assert.Empty(t, r.Items)
	assert.Equal(t, "Email", r.Source.Label())
}

package extracttodos

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/models"
)

func TestParseCandidates_FencedArray(t *testing.T) {
	raw := "```json\n[{\"description\": \"Ship release\", \"urgency\": \"HIGH\", \"confidence\": 0.8, \"deadline\": \"Friday\"}]\n```"

	report, err := ParseCandidates(raw)
	require.NoError(t, err)
	require.Len(t, report.Candidates, 1)

	c := report.Candidates[0]
	assert.Equal(t, "Ship release", c.Description)
	assert.Equal(t, models.UrgencyHigh, c.Urgency)
	assert.Equal(t, "HIGH", c.OriginalUrgency)
	assert.Equal(t, 0.8, c.Confidence)
	assert.Equal(t, "Friday", c.Deadline)
	assert.False(t, report.Repaired)
}

func TestParseCandidates_EmptyArray(t *testing.T) {
	report, err := ParseCandidates("[]")
	require.NoError(t, err)
	assert.Empty(t, report.Candidates)
	assert.Empty(t, report.Rejected)
}

func TestParseCandidates_ProseAroundArray(t *testing.T) {
	report, err := ParseCandidates(`Here is what I found: [{"description": "Reply to Bob", "confidence": 0.7}] Hope that helps.`)
	require.NoError(t, err)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, models.UrgencyLow, report.Candidates[0].Urgency)
}

func TestParseCandidates_RepairsBrokenJSON(t *testing.T) {
	report, err := ParseCandidates(`[{"description": "Fix CI", "urgency": "critical", "confidence": 0.9,}]`)
	require.NoError(t, err)
	assert.True(t, report.Repaired)
	require.Len(t, report.Candidates, 1)
	assert.Equal(t, models.UrgencyCritical, report.Candidates[0].Urgency)
}

func TestParseCandidates_Malformed(t *testing.T) {
	for _, raw := range []string{"", "```\n```", `{"description": "not a list", "confidence": 1}`} {
		_, err := ParseCandidates(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, apperrors.ErrMalformedAIResponse), raw)
		assert.Equal(t, apperrors.ErrCodeAIResponseMalformed, apperrors.ExtractCode(err))
	}
}

func TestParseCandidates_ConfidenceHandling(t *testing.T) {
	raw := `[
		{"description": "numeric string", "confidence": "0.75"},
		{"description": "too high", "confidence": 1.7},
		{"description": "negative", "confidence": -0.2},
		{"description": "words", "confidence": "very sure"},
		{"description": "missing"},
		{"confidence": 0.9},
		"just a string"
	]`

	report, err := ParseCandidates(raw)
	require.NoError(t, err)
	require.Len(t, report.Candidates, 3)

	assert.Equal(t, 0.75, report.Candidates[0].Confidence)
	assert.Equal(t, 1.0, report.Candidates[1].Confidence)
	assert.True(t, report.Candidates[1].Clamped)
	assert.Equal(t, 0.0, report.Candidates[2].Confidence)

	require.Len(t, report.Rejected, 4)
	assert.Equal(t, 3, report.Rejected[0].Index)
	assert.Contains(t, report.Rejected[0].Reason, "not numeric")
	assert.Equal(t, 4, report.Rejected[1].Index)
	assert.Equal(t, 5, report.Rejected[2].Index)
	assert.Equal(t, 6, report.Rejected[3].Index)
}

func TestParseCandidates_NullDeadlineAndUrgency(t *testing.T) {
	report, err := ParseCandidates(`[{"description": "x", "confidence": 0.9, "deadline": null, "urgency": null}]`)
	require.NoError(t, err)
	require.Len(t, report.Candidates, 1)
	assert.Empty(t, report.Candidates[0].Deadline)
	assert.Equal(t, models.UrgencyLow, report.Candidates[0].Urgency)
}

package extracttodos

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/common/validation"
	"work-planner/internal/models"
)

// candidateSchema is the shape every element of the model's JSON array must
// have. Confidence may arrive as a number or a numeric string.
var candidateSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"description", "confidence"},
	"properties": map[string]interface{}{
		"description": map[string]interface{}{"type": "string", "minLength": 1},
		"urgency":     map[string]interface{}{"type": []interface{}{"string", "null"}},
		"confidence":  map[string]interface{}{"type": []interface{}{"number", "string"}},
		"deadline":    map[string]interface{}{"type": []interface{}{"string", "null"}},
	},
})

// Candidate is one validated entry of a model response.
type Candidate struct {
	Description     string
	Urgency         models.Urgency
	OriginalUrgency string
	Confidence      float64
	Deadline        string
	Clamped         bool
}

// Rejection explains why an array element was dropped.
type Rejection struct {
	Index  int
	Reason string
}

// ParseReport is the result of ParseCandidates. Rejected lists every
// element that was dropped, so callers can log each one.
type ParseReport struct {
	Candidates []Candidate
	Rejected   []Rejection
	Repaired   bool
}

// ParseCandidates reads a model response as a JSON array of action item
// candidates. Markdown fences and surrounding prose are tolerated, and
// syntactically broken JSON is repaired once. Anything that is still not an
// array yields an AI_RESPONSE_MALFORMED error matching
// errors.ErrMalformedAIResponse.
func ParseCandidates(raw string) (*ParseReport, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, apperrors.NewMalformedAIResponseError("empty response", raw)
	}

	report := &ParseReport{}
	elems, err := decodeArray(text)
	if err != nil {
		repaired, rerr := jsonrepair.JSONRepair(text)
		if rerr != nil {
			return nil, apperrors.NewMalformedAIResponseError(fmt.Sprintf("invalid JSON: %v", err), raw)
		}
		elems, err = decodeArray(repaired)
		if err != nil {
			return nil, apperrors.NewMalformedAIResponseError(fmt.Sprintf("not a JSON array: %v", err), raw)
		}
		report.Repaired = true
	}

	for i, elem := range elems {
		c, reason := toCandidate(elem)
		if reason != "" {
			report.Rejected = append(report.Rejected, Rejection{Index: i, Reason: reason})
			continue
		}
		report.Candidates = append(report.Candidates, c)
	}
	return report, nil
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```JSON")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

// decodeArray unmarshals text as an array, falling back to the outermost
// [...] span when the model wrapped it in prose.
func decodeArray(text string) ([]interface{}, error) {
	var v interface{}
	err := json.Unmarshal([]byte(text), &v)
	if err != nil {
		start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
		if start < 0 || end <= start {
			return nil, err
		}
		if err2 := json.Unmarshal([]byte(text[start:end+1]), &v); err2 != nil {
			return nil, err
		}
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	return arr, nil
}

func toCandidate(elem interface{}) (Candidate, string) {
	res := candidateSchema.Validate(elem)
	if !res.Valid {
		return Candidate{}, res.Summary()
	}
	obj := elem.(map[string]interface{})

	conf, err := parseConfidence(obj["confidence"])
	if err != nil {
		return Candidate{}, err.Error()
	}

	c := Candidate{Description: strings.TrimSpace(obj["description"].(string))}
	if c.Description == "" {
		return Candidate{}, "description: blank"
	}

	switch {
	case conf < 0:
		c.Confidence, c.Clamped = 0, true
	case conf > 1:
		c.Confidence, c.Clamped = 1, true
	default:
		c.Confidence = conf
	}

	rawUrgency, _ := obj["urgency"].(string)
	c.OriginalUrgency = rawUrgency
	c.Urgency, _ = models.ParseUrgency(rawUrgency)

	if d, ok := obj["deadline"].(string); ok {
		d = strings.TrimSpace(d)
		if !strings.EqualFold(d, "null") && !strings.EqualFold(d, "none") {
			c.Deadline = d
		}
	}
	return c, ""
}

func parseConfidence(v interface{}) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("confidence: %q is not numeric", t)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("confidence: unsupported type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("confidence: %v is not finite", f)
	}
	return f, nil
}

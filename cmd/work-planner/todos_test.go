package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"work-planner/internal/models"
	aggregatetodos "work-planner/internal/workers/todos/aggregate-todos"
)

func sampleResult() *aggregatetodos.Result {
	return aggregatetodos.Aggregate([]models.SourceResult{{
		Source: models.SourceJira,
		Items: []models.ActionItem{{
			Description: "Fix linker",
			Urgency:     models.UrgencyCritical,
			Confidence:  0.9,
			Source:      models.SourceJira,
			Metadata:    map[string]string{"issue_key": "TOOL-1"},
		}},
	}}, aggregatetodos.Options{ConfidenceThreshold: 0.6, DaysBack: 2})
}

func TestWriteTodos_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTodos(&buf, "json", sampleResult()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Last 2 days", decoded["analysisPeriod"])
	todos := decoded["todos"].([]interface{})
	require.Len(t, todos, 1)
	assert.Equal(t, "critical", todos[0].(map[string]interface{})["urgency"])
}

func TestWriteTodos_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTodos(&buf, "yaml", sampleResult()))

	var decoded struct {
		Todos []struct {
			Description string            `yaml:"description"`
			Metadata    map[string]string `yaml:"metadata"`
		} `yaml:"todos"`
		ByUrgency map[string]int `yaml:"by_urgency"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Todos, 1)
	assert.Equal(t, "Fix linker", decoded.Todos[0].Description)
	assert.Equal(t, "TOOL-1", decoded.Todos[0].Metadata["issue_key"])
	assert.Equal(t, 1, decoded.ByUrgency["critical"])
}

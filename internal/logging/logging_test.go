package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent_TagsJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", JSON: true, Output: &buf})

	logger := Component("pipeline")
	logger.Debug().Int("chunks", 3).Msg("stored")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "pipeline", record["component"])
	assert.Equal(t, "stored", record["message"])
	assert.Equal(t, "debug", record["level"])
	assert.EqualValues(t, 3, record["chunks"])
}

func TestInit_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", JSON: true, Output: &buf})

	logger := Component("tui")
	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInit_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "loud", JSON: true, Output: &buf})

	logger := Component("x")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

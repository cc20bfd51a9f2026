package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONWithBaseAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "debug", App: "tradesarace", Env: "test", Output: &buf})

	logger.Debug("hello", "user_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "tradesarace", entry["app"])
	assert.Equal(t, "test", entry["env"])
	assert.EqualValues(t, 7, entry["user_id"])
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "chatty", Text: true, Output: &buf})

	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "msg=shown"))
}

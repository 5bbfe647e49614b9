package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDAttribute(t *testing.T) {
	var buf bytes.Buffer
	log := New("prod", &buf)

	ctx := WithRequestID(context.Background(), "req-1")
	log.With("component", "test").InfoContext(ctx, "hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "test", entry["component"])
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	New("prod", &buf).Debug("hidden")
	assert.Empty(t, buf.String())

	New("dev", &buf).Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestRequestIDMissing(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
}

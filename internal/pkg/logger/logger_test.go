package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRun_AttachesRunID(t *testing.T) {
	var buf bytes.Buffer
	closer, err := Init(Config{Level: "debug", Environment: "test", Out: &buf})
	require.NoError(t, err)
	defer closer.Close()

	ctx, runID := WithRun(context.Background(), "import")
	require.NotEmpty(t, runID)

	FromContext(ctx).Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, runID, line["run_id"])
	assert.Equal(t, "import", line["command"])
	assert.Equal(t, "hello", line["message"])
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

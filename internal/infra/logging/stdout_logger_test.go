package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflow-labs/payflow/internal/infra/logging"
)

func TestStdoutLogger_WritesOneJSONLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	l := &logging.StdoutLogger{Out: &buf}

	l.Info("payment created", map[string]any{"payment-id": "pay-1"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "payment created", entry["msg"])
	assert.Equal(t, "payflow", entry["service"])
	assert.Equal(t, "pay-1", entry["payment-id"])
	assert.NotEmpty(t, entry["time"])
}

func TestStdoutLogger_ErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	l := &logging.StdoutLogger{Out: &buf}

	l.Error("handler failed", nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
}

func TestStdoutLogger_FieldsOverrideDefaults(t *testing.T) {
	var buf bytes.Buffer
	l := &logging.StdoutLogger{Out: &buf}

	l.Info("msg", map[string]any{"service": "other"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "other", entry["service"])
}

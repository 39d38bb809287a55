package mga

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogConfig{Level: "warn", Format: "logfmt"})
	level.Info(logger).Log("msg", "hidden")
	level.Warn(logger).Log("msg", "shown", "sequence", "3-2-3")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "sequence=3-2-3")
	assert.Contains(t, out, "ts=")

	buf.Reset()
	logger = NewLogger(&buf, LogConfig{Level: "debug", Format: "JSON"})
	level.Debug(logger).Log("msg", "details", "evaluations", 12)
	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line))
	assert.Equal(t, "details", line["msg"])
	assert.Equal(t, "debug", line["level"])
	assert.EqualValues(t, 12, line["evaluations"])

	buf.Reset()
	logger = NewLogger(&buf, LogConfig{Level: "none"})
	level.Error(logger).Log("msg", "silenced")
	assert.Empty(t, buf.String())

	assert.NoError(t, LoggerOrNop(nil).Log("msg", "discarded"))
}

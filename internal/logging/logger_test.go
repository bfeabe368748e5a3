package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFormatIncludesLevelMessageAndSession(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Text, Debug, "sess-1")
	l.Infof("built %s", "Main")
	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "built Main")
	assert.Contains(t, out, "session=sess-1")
}

func TestMinLevelSuppressesLowerSeverity(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Text, Warn, "sess-1")
	l.Debugf("noisy")
	l.Infof("also noisy")
	assert.Empty(t, buf.String())
	l.Errorf("boom")
	assert.Contains(t, buf.String(), "boom")
}

func TestJSONFormatEncodesEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, JSON, Debug, "sess-2")
	l.Warnf("careful")
	line := strings.TrimSpace(buf.String())
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(line), &e))
	assert.Equal(t, "WARN", e.Level)
	assert.Equal(t, "careful", e.Message)
	assert.Equal(t, "sess-2", e.SessionID)
}

func TestNewGeneratesSessionIDWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Text, Debug, "")
	l.Infof("hi")
	assert.NotContains(t, buf.String(), "session=)")
	assert.Contains(t, buf.String(), "session=")
}

func TestWithFieldsAttachesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, JSON, Debug, "sess-3")
	fl := l.WithFields(map[string]interface{}{"phase": "emit"})
	fl.Infof("done")
	var e Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
	assert.Equal(t, "emit", e.Fields["phase"])
}

func TestLevelStringNames(t *testing.T) {
	assert.Equal(t, "DEBUG", Debug.String())
	assert.Equal(t, "INFO", Info.String())
	assert.Equal(t, "WARN", Warn.String())
	assert.Equal(t, "ERROR", Error.String())
}

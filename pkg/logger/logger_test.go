package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&buf, "debug", "json")

	log.WithField("mission", "daily_login").Debug("claimed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "claimed", entry["msg"])
	assert.Equal(t, "daily_login", entry["mission"])
}

func TestNewWithOutputUnknownLevelIsInfo(t *testing.T) {
	log := NewWithOutput(&bytes.Buffer{}, "chatty", "text")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("dropped")
	assert.NotNil(t, log)
}

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	Init("warn")
	Debugf("hidden debug")
	Infof("hidden info")
	Warnf("visible warn %d", 1)
	Errorf("visible error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible warn 1")
	assert.Contains(t, out, "visible error")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "[ERROR]")
}

func TestInitParsing(t *testing.T) {
	cases := map[string]string{
		"debug":    "debug",
		"DEBUG":    "debug",
		" warning": "warn",
		"error":    "error",
		"bogus":    "info",
		"":         "info",
	}
	for in, want := range cases {
		Init(in)
		assert.Equal(t, want, LevelString(), in)
	}
	Init("info")
}

func TestDebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	Init("debug")
	Debugf("now visible")
	assert.True(t, strings.Contains(buf.String(), "now visible"))
	Init("info")
}

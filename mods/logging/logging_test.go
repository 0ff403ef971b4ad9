package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pqsgate/pqsgate/mods/logging"
	"github.com/stretchr/testify/require"
)

func TestLevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logging.NewLog("test", buf)
	log.SetLevel(logging.LevelWarn)

	log.Infof("should not appear %d", 1)
	require.Empty(t, buf.String())

	log.Warnf("should appear %d", 2)
	require.Contains(t, buf.String(), "WARN")
	require.Contains(t, buf.String(), "should appear 2")
}

func TestLevelPatterns(t *testing.T) {
	logging.SetDefaultLevel(logging.LevelInfo)
	logging.SetLevel("phoenix*", logging.LevelTrace)
	logging.SetLevel("phoenix-protocol", logging.LevelError)

	require.Equal(t, logging.LevelTrace, logging.GetLevel("phoenix"))
	// longest matching pattern wins
	require.Equal(t, logging.LevelError, logging.GetLevel("phoenix-protocol"))
	require.Equal(t, logging.LevelInfo, logging.GetLevel("httpd"))
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, logging.LevelTrace, logging.ParseLogLevel("trace"))
	require.Equal(t, logging.LevelError, logging.ParseLogLevel("ERROR"))
	require.Equal(t, "WARN", logging.LogLevelName(logging.LevelWarn))
}

func TestPlainArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logging.NewLog("test", buf)
	log.SetLevel(logging.LevelTrace)
	log.Info("hello", 42, "world")
	line := buf.String()
	require.True(t, strings.Contains(line, "hello 42 world"), line)
}

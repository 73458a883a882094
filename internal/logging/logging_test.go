package logging_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dusk-network/kelvin/internal/logging"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(os.Stderr)
	prev := logging.GetLevel()
	defer logging.SetLevel(prev)

	logging.SetLevel(logging.LogLevelWarning)
	logging.Debugf("hidden")
	logging.Warningf("shown %d", 1)

	out := buf.String()
	require.False(t, strings.Contains(out, "hidden"))
	require.True(t, strings.Contains(out, "shown 1"))
}

func TestFromStringParsesNamesAndNumbers(t *testing.T) {
	require.Equal(t, logging.LogLevelDebug, logging.FromString("debug"))
	require.Equal(t, logging.LogLevelError, logging.FromString("error"))
	require.Equal(t, logging.LogLevelDebug, logging.FromString("3"))
	require.Equal(t, logging.LogLevelBasic, logging.FromString("nonsense"))
}

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture runs the CLI with args and returns what it printed.
func capture(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	err := Execute(args)
	return buf.String(), err
}

func TestExecute_HelpAndVersion(t *testing.T) {
	out, err := capture(t)
	require.NoError(t, err)
	for _, name := range []string{"check", "curve", "spring"} {
		assert.Contains(t, out, name)
	}

	out, err = capture(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "motion version 0.1.0-dev (built unknown)\n", out)

	out, err = capture(t, "curve", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "motion curve <easing> [samples]")

	_, err = capture(t, "bogus")
	assert.EqualError(t, err, "unknown command: bogus")
}

func TestCurve(t *testing.T) {
	out, err := capture(t, "curve", "linear", "4")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "linear", lines[0])
	assert.Equal(t, "css: linear", lines[1])
	assert.Equal(t, " 0.50    0.5000  "+strings.Repeat("#", 20), lines[4])
	assert.Equal(t, " 1.00    1.0000  "+strings.Repeat("#", 40), lines[6])

	_, err = capture(t, "curve", "nope")
	assert.Error(t, err)
	_, err = capture(t, "curve", "linear", "0")
	assert.Error(t, err)
}

func TestSpring(t *testing.T) {
	out, err := capture(t, "spring", "100", "20", "1", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "regime: critically damped (damping ratio 1.000)")
	assert.Contains(t, out, "1.0000")

	_, err = capture(t, "spring", "0", "10", "1")
	assert.Error(t, err)
	_, err = capture(t, "spring", "x", "10", "1")
	assert.EqualError(t, err, `stiffness: "x" is not a number`)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "motion.yaml"), []byte("budget:\n  max_animations: 40\neasings:\n  card: ease-out\n"), 0o644))

	out, err := capture(t, "check", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "schema v1.0.0")
	assert.Contains(t, out, "  animations      40\n")
	assert.Contains(t, out, "  animations      20\n", "degraded cap is halved")
	assert.Contains(t, out, "  momentum        off\n")
	assert.Contains(t, out, "  card            ease-out\n")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "motion.yaml"), []byte("version: v2\n"), 0o644))
	_, err = capture(t, "check", dir)
	assert.Error(t, err)
}

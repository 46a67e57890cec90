package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sanonone/glyphgarden/pkg/growth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadlessRun(t *testing.T) {
	dir := t.TempDir()
	poem := filepath.Join(dir, "poem.txt")
	require.NoError(t, os.WriteFile(poem, []byte("the river bends where the willow leans"), 0o644))
	cfgPath := filepath.Join(dir, "glyphgarden.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("canvas:\n  width: 2000\n  height: 2000\nlog:\n  level: error\n"), 0o644))

	var stdout, stderr bytes.Buffer
	err := run([]string{"-config", cfgPath, "-source", poem, "-ticks", "4"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	var report growth.SystemReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.LessOrEqual(t, report.Generation, 4)
	assert.GreaterOrEqual(t, report.NodeCount, 1)
	assert.True(t, report.Running)
}

func TestEngineLogsTagComponentOnce(t *testing.T) {
	dir := t.TempDir()
	poem := filepath.Join(dir, "poem.txt")
	require.NoError(t, os.WriteFile(poem, []byte("the river bends"), 0o644))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-source", poem, "-ticks", "1"}, &stdout, &stderr))

	tagged := 0
	for _, line := range strings.Split(stderr.String(), "\n") {
		if n := strings.Count(line, "component=growth"); n > 0 {
			tagged++
			assert.Equal(t, 1, n, line)
		}
	}
	assert.Positive(t, tagged, "engine lifecycle lines are logged at info")
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run([]string{"-source", filepath.Join(t.TempDir(), "missing.txt")}, &stdout, &stderr)
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = run([]string{"-no-such-flag"}, &stdout, &stderr)
	assert.Error(t, err)

	assert.Empty(t, stdout.String())
}

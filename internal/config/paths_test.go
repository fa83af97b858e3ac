package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathsCustomHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("AGENTDECK_HOME", tmp)

	paths, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, tmp, paths.Base)
	assert.Equal(t, filepath.Join(tmp, "config.yaml"), paths.Config)
	assert.Equal(t, filepath.Join(tmp, ".env"), paths.Env)
	assert.Equal(t, filepath.Join(tmp, "data", "agentdeck.db"), paths.DefaultDB())
	assert.Equal(t, filepath.Join(tmp, "logs", "console.log"), paths.DefaultLogFile())
}

func TestEnsureDirs(t *testing.T) {
	t.Setenv("AGENTDECK_HOME", t.TempDir())

	paths, err := ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirs())

	for _, d := range []string{paths.Base, paths.Logs, paths.Data} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestParseConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single segment", "console", []string{"console"}, false},
		{"two segments", "console.baseUrl", []string{"console", "baseUrl"}, false},
		{"empty", "", nil, true},
		{"empty segment", "console..baseUrl", nil, true},
		{"leading dot", ".console", nil, true},
		{"trailing dot", "console.", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfigPath(tt.input)
			if tt.wantErr {
				var ce *ConfigError
				assert.ErrorAs(t, err, &ce)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSetUnsetValueAtPath(t *testing.T) {
	root := map[string]any{
		"server": map[string]any{"port": 18790, "bind": "loopback"},
		"simple": "value",
	}

	val, ok := GetValueAtPath(root, []string{"server", "port"})
	assert.True(t, ok)
	assert.Equal(t, 18790, val)

	_, ok = GetValueAtPath(root, []string{"simple", "sub"})
	assert.False(t, ok)

	SetValueAtPath(root, []string{"console", "token"}, "abc")
	val, ok = GetValueAtPath(root, []string{"console", "token"})
	assert.True(t, ok)
	assert.Equal(t, "abc", val)

	SetValueAtPath(root, []string{"simple", "nested"}, 1)
	val, ok = GetValueAtPath(root, []string{"simple", "nested"})
	assert.True(t, ok)
	assert.Equal(t, 1, val)

	assert.True(t, UnsetValueAtPath(root, []string{"server", "port"}))
	_, ok = GetValueAtPath(root, []string{"server", "port"})
	assert.False(t, ok)
	assert.False(t, UnsetValueAtPath(root, []string{"server", "port"}))
	assert.False(t, UnsetValueAtPath(root, []string{"missing", "x"}))
}

package root_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pod-ledger/cmd/root"
)

func init() {
	root.Init()
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "pod-ledger", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "supplier exports")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
}

func TestRootCommand_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
	}{
		{"input", "i"},
		{"output", "o"},
		{"config", "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := root.Cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
		})
	}
}

func TestRootCommand_LoadsConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("database:\n  path: "+filepath.Join(dir, "ledger.db")+"\n"), 0644))

	root.SharedFlags.ConfigFile = file
	defer func() { root.SharedFlags.ConfigFile = "" }()

	require.NoError(t, root.Cmd.PersistentPreRunE(root.Cmd, nil))
	require.NotNil(t, root.Cfg)
	assert.Equal(t, filepath.Join(dir, "ledger.db"), root.Cfg.Database.Path)

	c, err := root.NewContainer()
	require.NoError(t, err)
	require.NoError(t, c.Close())
}

package confirm

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pod-ledger/cmd/root"
)

func TestProviderFlagSetsSharedFlags(t *testing.T) {
	defer func() { root.SharedFlags.Provider = 0 }()

	flag := Cmd.Flags().Lookup("provider")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag])

	require.NoError(t, Cmd.Flags().Set("provider", "3"))
	assert.Equal(t, uint(3), root.SharedFlags.Provider)
}

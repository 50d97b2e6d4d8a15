package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/racketbot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "racketbot version "+strings.TrimSpace(racketbot.Version)+"\n", out.String())
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"run", "serve", "catalog", "mcp", "graph", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	flag := runCmd.Flags().Lookup("catalog")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

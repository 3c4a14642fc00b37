package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "filters", cmd.Use)
	assert.Contains(t, cmd.Long, "filter trees")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"check", "decode", "roundtrip", "exclude", "sql"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestDecodeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	decodeCmd, _, err := cmd.Find([]string{"decode"})
	require.NoError(t, err)

	depthFlag := decodeCmd.Flags().Lookup("max-depth")
	require.NotNil(t, depthFlag)
	assert.Equal(t, "64", depthFlag.DefValue)

	strictFlag := decodeCmd.Flags().Lookup("strict")
	require.NotNil(t, strictFlag)
	assert.Equal(t, "false", strictFlag.DefValue)
}

func TestExcludeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	excludeCmd, _, err := cmd.Find([]string{"exclude"})
	require.NoError(t, err)

	fieldFlag := excludeCmd.Flags().Lookup("field")
	require.NotNil(t, fieldFlag)
}

func TestSQLCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sqlCmd, _, err := cmd.Find([]string{"sql"})
	require.NoError(t, err)

	columnFlag := sqlCmd.Flags().Lookup("column")
	require.NotNil(t, columnFlag)
}

func TestInvalidFormatRejected(t *testing.T) {
	_, _, err := runCommand(t, "--format", "yaml", "check", "somefile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

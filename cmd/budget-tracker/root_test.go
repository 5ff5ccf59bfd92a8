package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "budget-tracker version dev")
}

func TestMigrateDownStepsFlag(t *testing.T) {
	cmd := newRootCmd()
	migrate, _, err := cmd.Find([]string{"migrate", "down"})
	require.NoError(t, err)

	flag := migrate.Flags().Lookup("steps")
	require.NotNil(t, flag)
	assert.Equal(t, "1", flag.DefValue)
}

func TestConfigFlagIsPersistent(t *testing.T) {
	cmd := newRootCmd()
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_RegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"seed"},
		{"sweep"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestRoot_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	for _, args := range [][]string{
		{"migrate", "up"},
		{"migrate", "down", "--to", "1"},
		{"seed"},
		{"sweep"},
	} {
		root := newRootCmd()
		root.SetOut(new(bytes.Buffer))
		root.SetErr(new(bytes.Buffer))
		root.SetArgs(args)

		err := root.Execute()
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "database url is not set")
	}
}

func TestSweep_RejectsZeroRetention(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"sweep", "--database-url", "postgres://unused", "--retention-days", "0"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retention-days")
}

func TestSeedResult_Print(t *testing.T) {
	var buf bytes.Buffer
	(&seedResult{userID: "u1", username: "seed", folderID: "f1", inserted: 3, skipped: 2}).print(&buf)

	out := buf.String()
	assert.Contains(t, out, seedEmail)
	assert.Contains(t, out, "3 created (skipped 2 already existing)")
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSQL(t *testing.T) {
	stmts := splitSQL("-- header\nCREATE TABLE a (id INT);\n\nCREATE INDEX b ON a (id);\n")
	assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE INDEX b ON a (id)"}, stmts)
}

func TestExtractTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0001.sql")
	require.NoError(t, os.WriteFile(path, []byte("create table if not exists rides (id text);\nCREATE TABLE IF NOT EXISTS ride_state_events (id bigserial);"), 0o600))

	tables, err := extractTables(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"rides", "ride_state_events"}, tables)
}

func TestExpect(t *testing.T) {
	assert.Equal(t, StatusPass, expect(200, 0, nil, 200).Status)
	assert.Equal(t, StatusFail, expect(409, 0, nil, 200).Status)
}

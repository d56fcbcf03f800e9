package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillflow/internal/config"
	"skillflow/internal/workflow"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DB.Default = "main"
	cfg.DB.Connections["main"] = config.ConnectionConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "main.db")}
	cfg.DB.Connections["reporting"] = config.ConnectionConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "reporting.db")}
	return cfg
}

func dbStep(query, connection string) workflow.Step {
	return workflow.Step{ID: "d1", Label: query, Action: workflow.DB{Query: query, Connection: connection}}
}

func TestDBClient_DefaultConnection(t *testing.T) {
	client := NewDBClient(sqliteConfig(t), nil)
	defer client.Close()
	ctx := context.Background()

	_, err := client.Handle(ctx, dbStep("CREATE TABLE deploys (id INTEGER, version TEXT)", ""))
	require.NoError(t, err)
	_, err = client.Handle(ctx, dbStep("INSERT INTO deploys VALUES (1, '1.0'), (2, '1.1')", ""))
	require.NoError(t, err)

	out, err := client.Handle(ctx, dbStep("SELECT id, version FROM deploys ORDER BY id", ""))

	require.NoError(t, err)
	rows := out.(Rows)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 1, rows[0]["id"])
	assert.Equal(t, "1.1", rows[1]["version"])
	assert.Equal(t, "id=1, version=1.0\nid=2, version=1.1", rows.String())
}

func TestDBClient_NamedConnection(t *testing.T) {
	client := NewDBClient(sqliteConfig(t), nil)
	defer client.Close()
	ctx := context.Background()

	_, err := client.Handle(ctx, dbStep("CREATE TABLE only_reporting (x INTEGER)", "Reporting"))
	require.NoError(t, err)

	_, err = client.Handle(ctx, dbStep("SELECT * FROM only_reporting", "reporting"))
	require.NoError(t, err, "connection names are case-insensitive")

	_, err = client.Handle(ctx, dbStep("SELECT * FROM only_reporting", ""))
	assert.Error(t, err, "table lives on the reporting connection only")
}

func TestDBClient_UnknownConnection(t *testing.T) {
	client := NewDBClient(sqliteConfig(t), nil)
	defer client.Close()

	_, err := client.Handle(context.Background(), dbStep("SELECT 1", "warehouse"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConnection))
	assert.Contains(t, err.Error(), "warehouse")
}

func TestDBClient_NoDefault(t *testing.T) {
	cfg := config.DefaultConfig()
	client := NewDBClient(cfg, nil)
	defer client.Close()

	_, err := client.Handle(context.Background(), dbStep("SELECT 1", ""))

	assert.True(t, errors.Is(err, ErrUnknownConnection))
}

func TestDBClient_QueryError(t *testing.T) {
	client := NewDBClient(sqliteConfig(t), nil)
	defer client.Close()

	_, err := client.Handle(context.Background(), dbStep("SELEKT nonsense", ""))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "query failed")
}

func TestDBClient_Close(t *testing.T) {
	client := NewDBClient(sqliteConfig(t), nil)

	_, err := client.Query(context.Background(), "main", "SELECT 1")
	require.NoError(t, err)

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}

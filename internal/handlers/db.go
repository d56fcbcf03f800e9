package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"skillflow/internal/config"
	"skillflow/internal/workflow"
)

// ErrUnknownConnection is returned when a DB step names a connection that is
// not configured, or names none and no default is set.
var ErrUnknownConnection = errors.New("unknown database connection")

// Rows is the output of a DB step: one map per row, keyed by column name.
type Rows []map[string]any

// String renders one row per line as sorted key=value pairs.
func (r Rows) String() string {
	var b strings.Builder
	for i, row := range r {
		if i > 0 {
			b.WriteByte('\n')
		}
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for j, k := range keys {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, row[k])
		}
	}
	return b.String()
}

// DBClient runs DB step queries against named connections.
//
// Connections are opened on first use and kept until [DBClient.Close].
type DBClient struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	mu    sync.Mutex
	conns map[string]*sqlx.DB
}

// NewDBClient creates a client for the connections declared in cfg.
func NewDBClient(cfg *config.Config, logger *zap.SugaredLogger) *DBClient {
	return &DBClient{
		cfg:    cfg,
		logger: nopIfNil(logger),
		conns:  make(map[string]*sqlx.DB),
	}
}

// Handle runs the step's query on its connection, or the default one.
func (c *DBClient) Handle(ctx context.Context, step workflow.Step) (any, error) {
	action, ok := step.Action.(workflow.DB)
	if !ok {
		return nil, unexpectedAction(step)
	}
	return c.Query(ctx, action.Connection, action.Query)
}

// Query runs query on the named connection and returns every row.
func (c *DBClient) Query(ctx context.Context, connection, query string) (Rows, error) {
	db, err := c.conn(connection)
	if err != nil {
		return nil, err
	}

	c.logger.Debugw("running query", "connection", connection, "query", query)
	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	out := Rows{}
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return out, nil
}

// Close closes every open connection.
func (c *DBClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for name, db := range c.conns {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	c.conns = make(map[string]*sqlx.DB)
	return errors.Join(errs...)
}

func (c *DBClient) conn(name string) (*sqlx.DB, error) {
	if name == "" {
		name = c.cfg.DB.Default
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no connection named and db.default is not set", ErrUnknownConnection)
	}

	key := strings.ToLower(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if db, ok := c.conns[key]; ok {
		return db, nil
	}

	conn, ok := c.cfg.Connection(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownConnection, name)
	}

	db, err := sqlx.Open(conn.Driver, conn.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection %q: %w", name, err)
	}
	c.conns[key] = db
	return db, nil
}

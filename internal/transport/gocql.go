// Package transport implements the executor's transport contract over a
// gocql session. It owns nothing but the mapping: connection pooling,
// timeouts, and retry policy stay inside gocql.
package transport

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/cqlkit/cqlkit/internal/config"
	"github.com/cqlkit/cqlkit/pkg/scope"
	"github.com/cqlkit/cqlkit/pkg/types"
)

// Gocql sends compiled statements through a gocql session and maps result
// rows into the sparse RawRow form. Safe for concurrent use; gocql
// sessions are.
type Gocql struct {
	session   *gocql.Session
	keyColumn string
}

// Connect creates a session from the configuration and wraps it.
func Connect(cfg *config.Config) (*Gocql, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Port = cfg.Port
	cluster.Keyspace = cfg.Keyspace
	cluster.Timeout = cfg.Timeout
	cluster.Consistency = mapConsistency(cfg.DefaultConsistency())

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create session: %w", err)
	}
	return &Gocql{session: session, keyColumn: cfg.KeyColumn}, nil
}

// NewWithSession wraps an existing session. keyColumn is the key column
// name as it appears in result rows.
func NewWithSession(session *gocql.Session, keyColumn string) *Gocql {
	return &Gocql{session: session, keyColumn: keyColumn}
}

// Send executes one statement and returns its rows in sparse form: the
// key column is lifted out of the column map, and columns that came back
// without data are dropped rather than kept as nulls.
func (t *Gocql) Send(ctx context.Context, stmt scope.Statement) ([]types.RawRow, error) {
	q := t.session.Query(stmt.Text, stmt.Params...).WithContext(ctx)
	if stmt.Consistency != types.ConsistencyDefault {
		q = q.Consistency(mapConsistency(stmt.Consistency))
	}

	iter := q.Iter()
	var rows []types.RawRow
	for {
		m := map[string]interface{}{}
		if !iter.MapScan(m) {
			break
		}
		row := types.RawRow{Key: m[t.keyColumn], Columns: make(map[string]types.Value)}
		for name, v := range m {
			if name == t.keyColumn || v == nil {
				continue
			}
			row.Columns[name] = v
		}
		rows = append(rows, row)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Close shuts the underlying session down.
func (t *Gocql) Close() {
	t.session.Close()
}

// mapConsistency maps cqlkit consistency levels onto gocql's.
func mapConsistency(c types.Consistency) gocql.Consistency {
	switch c {
	case types.ConsistencyAny:
		return gocql.Any
	case types.ConsistencyOne:
		return gocql.One
	case types.ConsistencyTwo:
		return gocql.Two
	case types.ConsistencyThree:
		return gocql.Three
	case types.ConsistencyAll:
		return gocql.All
	case types.ConsistencyLocalQuorum:
		return gocql.LocalQuorum
	case types.ConsistencyEachQuorum:
		return gocql.EachQuorum
	default:
		return gocql.Quorum
	}
}

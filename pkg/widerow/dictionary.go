// Package widerow provides a dictionary abstraction over one wide row: a
// row whose dynamically-named columns are used as map-like storage. Values
// pass through a pluggable serializer codec at the read/write boundary;
// reads page through the row in fixed-size column batches.
package widerow

import (
	"context"

	"github.com/cqlkit/cqlkit/pkg/exec"
	"github.com/cqlkit/cqlkit/pkg/mutate"
	"github.com/cqlkit/cqlkit/pkg/scope"
	"github.com/cqlkit/cqlkit/pkg/types"
)

// Dictionary is a map-like view of one wide row. It implements the
// {get, set, scan, load} capability set; the zero value is not usable,
// construct with New.
type Dictionary struct {
	executor  *exec.Executor
	transport exec.Transport
	table     string
	keyColumn string
	key       types.Value
	codec     Codec
	opts      types.WriteOptions
}

// Config holds dictionary construction parameters.
type Config struct {
	// Table is the row container holding the wide row
	Table string

	// KeyColumn is the key column name as seen in result rows
	KeyColumn string

	// Key addresses the one row this dictionary wraps
	Key types.Value

	// Codec converts values at the storage boundary (default: MsgpackCodec)
	Codec Codec

	// WriteOptions apply to every mutation issued by the dictionary
	WriteOptions types.WriteOptions
}

// New creates a dictionary over one wide row. The transport must be the
// same collaborator the executor sends through.
func New(executor *exec.Executor, transport exec.Transport, cfg Config) *Dictionary {
	codec := cfg.Codec
	if codec == nil {
		codec = MsgpackCodec{}
	}
	return &Dictionary{
		executor:  executor,
		transport: transport,
		table:     cfg.Table,
		keyColumn: cfg.KeyColumn,
		key:       cfg.Key,
		codec:     codec,
		opts:      cfg.WriteOptions,
	}
}

// Get reads one column. The second return is false when the column is
// absent; absence is the only "no value" state, there are no stored nulls.
func (d *Dictionary) Get(ctx context.Context, column string) (types.Value, bool, error) {
	s := scope.New(d.table, d.keyColumn).Where(d.key).Select(column)
	rows, err := d.executor.Query(s).Load(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	raw, present := rows[0].Columns[column]
	if !present {
		return nil, false, nil
	}
	v, err := d.decode(column, raw)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set writes one column through the codec.
func (d *Dictionary) Set(ctx context.Context, column string, v types.Value) error {
	data, err := d.codec.Encode(column, v)
	if err != nil {
		return err
	}
	plan := mutate.Insert(d.table, d.keyColumn, d.key, map[string]types.Value{column: data}, d.opts)
	return mutate.Apply(ctx, d.transport, plan)
}

// SetAll writes several columns in one statement.
func (d *Dictionary) SetAll(ctx context.Context, values map[string]types.Value) error {
	encoded := make(map[string]types.Value, len(values))
	for column, v := range values {
		data, err := d.codec.Encode(column, v)
		if err != nil {
			return err
		}
		encoded[column] = data
	}
	plan := mutate.Insert(d.table, d.keyColumn, d.key, encoded, d.opts)
	return mutate.Apply(ctx, d.transport, plan)
}

// Delete removes the named columns, or the whole row when none are named.
func (d *Dictionary) Delete(ctx context.Context, columns ...string) error {
	var plan mutate.MutationPlan
	if len(columns) == 0 {
		plan = mutate.DeleteRow(d.table, d.keyColumn, d.key, d.opts)
	} else {
		plan = mutate.DeleteColumns(d.table, d.keyColumn, d.key, columns, d.opts)
	}
	return mutate.Apply(ctx, d.transport, plan)
}

// Each walks every column in comparator order, decoding as it goes.
// Batches are fetched lazily as fn consumes columns; returning false from
// fn stops the scan.
func (d *Dictionary) Each(ctx context.Context, fn func(column string, v types.Value) bool) error {
	it := d.executor.ColumnScan(d.table, d.keyColumn, d.key)
	for {
		col, ok := it.Next(ctx)
		if !ok {
			return it.Err()
		}
		v, err := d.decode(col.Name, col.Value)
		if err != nil {
			return err
		}
		if !fn(col.Name, v) {
			return nil
		}
	}
}

// Load materializes the whole row as a map, paging through all column
// batches.
func (d *Dictionary) Load(ctx context.Context) (map[string]types.Value, error) {
	out := make(map[string]types.Value)
	err := d.Each(ctx, func(column string, v types.Value) bool {
		out[column] = v
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// decode runs a stored value through the codec. Values that did not come
// back as bytes predate the codec and pass through unchanged.
func (d *Dictionary) decode(column string, raw types.Value) (types.Value, error) {
	data, ok := raw.([]byte)
	if !ok {
		return raw, nil
	}
	return d.codec.Decode(column, data)
}

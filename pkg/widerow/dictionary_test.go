package widerow

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cqlkit/cqlkit/pkg/exec"
	"github.com/cqlkit/cqlkit/pkg/scope"
	"github.com/cqlkit/cqlkit/pkg/types"
)

// memoryTransport answers reads from a fixed column map and records writes.
type memoryTransport struct {
	mu      sync.Mutex
	columns map[string]types.Value
	writes  []scope.Statement
}

func (t *memoryTransport) Send(ctx context.Context, stmt scope.Statement) ([]types.RawRow, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !strings.HasPrefix(stmt.Text, "SELECT") {
		t.writes = append(t.writes, stmt)
		return nil, nil
	}
	if len(t.columns) == 0 {
		return nil, nil
	}
	cols := make(map[string]types.Value, len(t.columns))
	for name, v := range t.columns {
		cols[name] = v
	}
	return []types.RawRow{{Key: "dict", Columns: cols}}, nil
}

func mustEncode(t *testing.T, v types.Value) []byte {
	t.Helper()
	data, err := msgpack.Marshal(v)
	require.NoError(t, err)
	return data
}

func newDict(transport exec.Transport, codec Codec) *Dictionary {
	executor := exec.New(transport, exec.DefaultConfig())
	return New(executor, transport, Config{
		Table:     "Dicts",
		KeyColumn: "KEY",
		Key:       "dict",
		Codec:     codec,
	})
}

func TestGetDecodesStoredValue(t *testing.T) {
	transport := &memoryTransport{columns: map[string]types.Value{
		"greeting": mustEncode(t, "hello"),
	}}
	d := newDict(transport, nil)

	v, found, err := d.Get(context.Background(), "greeting")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", v)
}

func TestGetAbsentColumn(t *testing.T) {
	transport := &memoryTransport{columns: map[string]types.Value{
		"other": mustEncode(t, 1),
	}}
	d := newDict(transport, nil)

	_, found, err := d.Get(context.Background(), "greeting")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetOnMissingRow(t *testing.T) {
	d := newDict(&memoryTransport{}, nil)

	_, found, err := d.Get(context.Background(), "greeting")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetEncodesThroughCodec(t *testing.T) {
	transport := &memoryTransport{}
	d := newDict(transport, nil)

	require.NoError(t, d.Set(context.Background(), "greeting", "hello"))

	require.Len(t, transport.writes, 1)
	stmt := transport.writes[0]
	assert.Equal(t, "UPDATE Dicts SET 'greeting' = ? WHERE KEY = ?", stmt.Text)

	// The bound value is the codec's wire form.
	var decoded types.Value
	require.NoError(t, msgpack.Unmarshal(stmt.Params[0].([]byte), &decoded))
	assert.Equal(t, "hello", decoded)
	assert.Equal(t, "dict", stmt.Params[1])
}

func TestDeleteWholeRow(t *testing.T) {
	transport := &memoryTransport{}
	d := newDict(transport, nil)

	require.NoError(t, d.Delete(context.Background()))
	require.Len(t, transport.writes, 1)
	assert.Equal(t, "DELETE FROM Dicts WHERE KEY = ?", transport.writes[0].Text)
}

func TestDeleteNamedColumns(t *testing.T) {
	transport := &memoryTransport{}
	d := newDict(transport, nil)

	require.NoError(t, d.Delete(context.Background(), "a", "b"))
	require.Len(t, transport.writes, 1)
	assert.Equal(t, "DELETE 'a', 'b' FROM Dicts WHERE KEY = ?", transport.writes[0].Text)
}

func TestLoadDecodesEveryColumn(t *testing.T) {
	transport := &memoryTransport{columns: map[string]types.Value{
		"a": mustEncode(t, "one"),
		"b": mustEncode(t, int8(2)),
	}}
	d := newDict(transport, nil)

	all, err := d.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "one", all["a"])
	assert.EqualValues(t, 2, all["b"])
}

func TestEachStopsWhenCallbackReturnsFalse(t *testing.T) {
	transport := &memoryTransport{columns: map[string]types.Value{
		"a": mustEncode(t, 1),
		"b": mustEncode(t, 2),
		"c": mustEncode(t, 3),
	}}
	d := newDict(transport, nil)

	var seen []string
	err := d.Each(context.Background(), func(column string, v types.Value) bool {
		seen = append(seen, column)
		return len(seen) < 2
	})
	require.NoError(t, err)

	// Comparator order, stopped after two.
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestSnappyCodecRoundTrip(t *testing.T) {
	codec := SnappyCodec{Inner: MsgpackCodec{}}

	payload := strings.Repeat("wide row payload ", 100)
	data, err := codec.Encode("payload", payload)
	require.NoError(t, err)
	assert.Less(t, len(data), len(payload), "repetitive payloads compress")

	v, err := codec.Decode("payload", data)
	require.NoError(t, err)
	assert.Equal(t, payload, v)
}

func TestCompressedValuesSurviveStorage(t *testing.T) {
	codec := SnappyCodec{Inner: MsgpackCodec{}}
	transport := &memoryTransport{}
	d := newDict(transport, codec)

	require.NoError(t, d.Set(context.Background(), "payload", "data"))
	require.Len(t, transport.writes, 1)

	// Feed the stored bytes back through a read.
	transport.columns = map[string]types.Value{
		"payload": transport.writes[0].Params[0],
	}
	v, found, err := d.Get(context.Background(), "payload")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "data", v)
}

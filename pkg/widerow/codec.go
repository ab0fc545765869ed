package widerow

import (
	"github.com/golang/snappy"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cqlkit/cqlkit/pkg/types"
)

// Codec converts between in-memory values and the bytes stored in a wide
// row's columns. It is a strategy hook: implementations may dispatch on
// the column name to store different columns in different formats. Codecs
// run only at the dictionary read/write boundary, never for scope queries.
type Codec interface {
	Encode(column string, v types.Value) ([]byte, error)
	Decode(column string, data []byte) (types.Value, error)
}

// MsgpackCodec stores values as MessagePack. It is the default codec.
type MsgpackCodec struct{}

// Encode marshals v as MessagePack.
func (MsgpackCodec) Encode(column string, v types.Value) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode unmarshals MessagePack data.
func (MsgpackCodec) Decode(column string, data []byte) (types.Value, error) {
	var v types.Value
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// SnappyCodec wraps another codec with Snappy block compression. Useful
// for wide rows holding large payload columns.
type SnappyCodec struct {
	Inner Codec
}

// Encode encodes with the inner codec and compresses the result.
func (c SnappyCodec) Encode(column string, v types.Value) ([]byte, error) {
	data, err := c.Inner.Encode(column, v)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, data), nil
}

// Decode decompresses and hands the result to the inner codec.
func (c SnappyCodec) Decode(column string, data []byte) (types.Value, error) {
	decoded, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, err
	}
	return c.Inner.Decode(column, decoded)
}

package types

// WriteOptions carries execution options for mutations. The zero value
// means no TTL, no explicit timestamp, and the transport's default
// consistency.
type WriteOptions struct {
	// Consistency is the write consistency level
	Consistency Consistency

	// TTLSeconds is the column time-to-live; zero means no TTL
	TTLSeconds int

	// TimestampMicros is the explicit write timestamp in microseconds;
	// zero lets the server assign one
	TimestampMicros int64
}

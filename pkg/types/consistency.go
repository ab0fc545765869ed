package types

// Consistency is the tunable consistency level attached to a statement.
// The zero value means "unset"; the transport applies its configured
// default when no level is given.
type Consistency int

const (
	// ConsistencyDefault leaves the level to the transport's configuration
	ConsistencyDefault Consistency = iota

	// ConsistencyAny is satisfied by any node, including hinted handoff
	ConsistencyAny

	// ConsistencyOne requires one replica
	ConsistencyOne

	// ConsistencyTwo requires two replicas
	ConsistencyTwo

	// ConsistencyThree requires three replicas
	ConsistencyThree

	// ConsistencyQuorum requires a majority of replicas
	ConsistencyQuorum

	// ConsistencyAll requires every replica
	ConsistencyAll

	// ConsistencyLocalQuorum requires a majority within the local datacenter
	ConsistencyLocalQuorum

	// ConsistencyEachQuorum requires a majority within each datacenter
	ConsistencyEachQuorum
)

// String returns the CQL keyword for the consistency level.
func (c Consistency) String() string {
	switch c {
	case ConsistencyAny:
		return "ANY"
	case ConsistencyOne:
		return "ONE"
	case ConsistencyTwo:
		return "TWO"
	case ConsistencyThree:
		return "THREE"
	case ConsistencyQuorum:
		return "QUORUM"
	case ConsistencyAll:
		return "ALL"
	case ConsistencyLocalQuorum:
		return "LOCAL_QUORUM"
	case ConsistencyEachQuorum:
		return "EACH_QUORUM"
	default:
		return ""
	}
}

// ParseConsistency maps a CQL consistency keyword to its Consistency value.
// Unknown keywords map to ConsistencyDefault.
func ParseConsistency(s string) Consistency {
	switch s {
	case "ANY":
		return ConsistencyAny
	case "ONE":
		return ConsistencyOne
	case "TWO":
		return ConsistencyTwo
	case "THREE":
		return ConsistencyThree
	case "QUORUM":
		return ConsistencyQuorum
	case "ALL":
		return ConsistencyAll
	case "LOCAL_QUORUM":
		return ConsistencyLocalQuorum
	case "EACH_QUORUM":
		return ConsistencyEachQuorum
	default:
		return ConsistencyDefault
	}
}

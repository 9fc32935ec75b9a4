package chain

// Policy selects how a lookup combines values when a key exists in more
// than one layer. The set is closed; Chain construction rejects values
// outside it.
type Policy int

const (
	// PolicyUnknown guards against zero-value misconfiguration so call
	// sites can detect a missing policy.
	PolicyUnknown Policy = iota
	// PolicyFirst returns the value from the earliest layer containing
	// the key. This is conventional layered-override semantics.
	PolicyFirst
	// PolicyAll collects one value per containing layer, in layer order.
	PolicyAll
	// PolicyUnique returns the single common value when every containing
	// layer agrees, and reports a conflict otherwise.
	PolicyUnique
	// PolicyFirstOrDefault behaves like PolicyFirst but resolves keys
	// absent from every layer to a configured default instead of failing.
	PolicyFirstOrDefault
)

func (p Policy) String() string {
	switch p {
	case PolicyFirst:
		return "first"
	case PolicyAll:
		return "all"
	case PolicyUnique:
		return "unique"
	case PolicyFirstOrDefault:
		return "first_or_default"
	default:
		return "unknown"
	}
}

// ParsePolicy converts a string representation into the corresponding
// Policy. Returns PolicyUnknown for unrecognised values.
func ParsePolicy(value string) Policy {
	switch value {
	case "first", "FIRST":
		return PolicyFirst
	case "all", "ALL":
		return PolicyAll
	case "unique", "UNIQUE":
		return PolicyUnique
	case "first_or_default", "FIRST_OR_DEFAULT":
		return PolicyFirstOrDefault
	default:
		return PolicyUnknown
	}
}

func (p Policy) valid() bool {
	switch p {
	case PolicyFirst, PolicyAll, PolicyUnique, PolicyFirstOrDefault:
		return true
	default:
		return false
	}
}

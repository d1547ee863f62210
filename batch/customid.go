package batch

import (
	"github.com/google/uuid"
)

// CustomIDFunc derives a custom_id from an instance id. It must be
// deterministic so re-running the same instances reproduces the same ids.
type CustomIDFunc func(instanceID string) string

// PrefixedIDs returns "<prefix>-<instance id>". An empty prefix returns the
// instance id unchanged.
func PrefixedIDs(prefix string) CustomIDFunc {
	return func(id string) string {
		if prefix == "" {
			return id
		}
		return prefix + "-" + id
	}
}

// UUIDIDs returns name-based (version 5) UUIDs of the instance id within
// namespace. Equal ids always map to equal UUIDs.
func UUIDIDs(namespace uuid.UUID) CustomIDFunc {
	return func(id string) string {
		return uuid.NewSHA1(namespace, []byte(id)).String()
	}
}

// DefaultCustomIDs is used when a writer is opened without WithCustomIDFunc.
var DefaultCustomIDs = PrefixedIDs("request")

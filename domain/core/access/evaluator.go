package access

import (
	"time"

	"memorylane-backend/domain/core/entities"
)

// CanAccess decides whether requester may view the memory at the given time.
// Access is granted if ANY rule matches:
//   - requester is the owner
//   - the memory is public
//   - the unlock time has passed, which opens read access to everyone
//   - requester appears in the inheritance address list
//
// The predicate is pure and evaluated fresh on every call so it can filter
// bulk query results as well as authorize single retrievals. Capabilities are
// never revoked, so for a fixed memory and requester the result is monotonic
// in time.
func CanAccess(memory *entities.Memory, requester string, now time.Time) bool {
	if memory == nil {
		return false
	}

	if requester == memory.Owner() {
		return true
	}

	if memory.IsPublic() {
		return true
	}

	if !now.Before(memory.UnlockTime()) {
		return true
	}

	for _, address := range memory.InheritanceAddresses() {
		if address == requester {
			return true
		}
	}

	return false
}

package model

// PursuitState is what an agent is doing right now.
type PursuitState int32

const (
	// StateUnknown - zero value, never assigned by the controller
	StateUnknown PursuitState = iota
	// StateFollowingPath - walking the patrol route
	StateFollowingPath
	// StateReturningPath - heading back to the closest patrol point
	StateReturningPath
	// StateFollowingSuspicion - investigating a suspicion point
	StateFollowingSuspicion
	// StateFollowingTarget - chasing a direct target
	StateFollowingTarget
	// StateEscapingTarget - reserved, no routine enters it
	StateEscapingTarget
	// StateWaiting - holding at a Stop point
	StateWaiting
	// StateAttacking - shot in progress
	StateAttacking
	// StateReloading - weapon reload in progress
	StateReloading
	// StateDead - terminal
	StateDead
)

// String returns human-readable state name
func (s PursuitState) String() string {
	switch s {
	case StateFollowingPath:
		return "FOLLOWING_PATH"
	case StateReturningPath:
		return "RETURNING_PATH"
	case StateFollowingSuspicion:
		return "FOLLOWING_SUSPICION"
	case StateFollowingTarget:
		return "FOLLOWING_TARGET"
	case StateEscapingTarget:
		return "ESCAPING_TARGET"
	case StateWaiting:
		return "WAITING"
	case StateAttacking:
		return "ATTACKING"
	case StateReloading:
		return "RELOADING"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// IsPatrolling reports whether s is one of the route-following states.
func (s PursuitState) IsPatrolling() bool {
	return s == StateFollowingPath || s == StateReturningPath || s == StateWaiting
}

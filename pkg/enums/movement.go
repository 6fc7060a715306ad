package enums

import "fmt"

// MovementKind labels a stock journal row.
type MovementKind string

const (
	MovementKindReceive MovementKind = "receive"
	MovementKindReserve MovementKind = "reserve"
	MovementKindCommit  MovementKind = "commit"
	MovementKindRelease MovementKind = "release"
	MovementKindAdjust  MovementKind = "adjust"
)

var validMovementKinds = []MovementKind{
	MovementKindReceive,
	MovementKindReserve,
	MovementKindCommit,
	MovementKindRelease,
	MovementKindAdjust,
}

func (k MovementKind) IsValid() bool {
	for _, candidate := range validMovementKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParseMovementKind(value string) (MovementKind, error) {
	for _, candidate := range validMovementKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement kind %q", value)
}

// MovementOutcome is the business result of a ledger operation.
type MovementOutcome string

const (
	MovementOutcomeApplied           MovementOutcome = "APPLIED"
	MovementOutcomeInsufficientStock MovementOutcome = "INSUFFICIENT_STOCK"
)

package protocol

// Rejection reason codes. Client protocol errors and policy violations
// share the same channel; none of them is a server fault.
const (
	ReasonBadRequest     = "bad_request"
	ReasonRateLimited    = "rate_limited"
	ReasonBadCoordinate  = "bad_coordinate"
	ReasonOutOfReach     = "out_of_reach"
	ReasonNothingToBreak = "nothing_to_break"
	ReasonOccupied       = "occupied"
	ReasonProtected      = "protected"
	ReasonNotPlaceable   = "not_placeable"
	ReasonNoResource     = "no_resource"
	ReasonBadSlot        = "bad_slot"
	ReasonIncompatible   = "incompatible_slot"
	ReasonInventoryFull  = "inventory_full"
)

var knownReasons = map[string]struct{}{
	ReasonBadRequest:     {},
	ReasonRateLimited:    {},
	ReasonBadCoordinate:  {},
	ReasonOutOfReach:     {},
	ReasonNothingToBreak: {},
	ReasonOccupied:       {},
	ReasonProtected:      {},
	ReasonNotPlaceable:   {},
	ReasonNoResource:     {},
	ReasonBadSlot:        {},
	ReasonIncompatible:   {},
	ReasonInventoryFull:  {},
}

func IsKnownReason(reason string) bool {
	_, ok := knownReasons[reason]
	return ok
}

package service

import (
	"fmt"
	"sort"
)

// DefaultMaxSeats is the per-booking seat limit used when none is configured.
const DefaultMaxSeats = 8

// Selection is the outcome of toggling one seat in a client's seat picker.
type Selection struct {
	Allowed  bool     `json:"allowed"`
	SeatIDs  []uint64 `json:"selectedSeatIds"`
	Message  string   `json:"message,omitempty"`
	Selected bool     `json:"selected"`
}

// CheckSelection applies the seat-picker rules to selected when the user clicks
// candidate.  Clicking a selected seat always deselects it.  Selecting a
// new seat is refused when the selection would exceed limit seats or would
// leave a single empty seat between two selected seats, i.e. when any two
// neighbours of the sorted selection differ by exactly 2.  Seat ids are
// assumed contiguous within a hall.  The returned SeatIDs are sorted.
//
// The rule is advisory: CreateBooking enforces the seat limit but not the
// gap rule.
func CheckSelection(selected []uint64, candidate uint64, limit int) Selection {
	if limit <= 0 {
		limit = DefaultMaxSeats
	}
	cur := dedupSorted(selected)
	for i, id := range cur {
		if id == candidate {
			next := append(append([]uint64{}, cur[:i]...), cur[i+1:]...)
			return Selection{Allowed: true, SeatIDs: next}
		}
	}
	if len(cur)+1 > limit {
		return Selection{SeatIDs: cur, Message: fmt.Sprintf("you can select at most %d seats", limit)}
	}
	next := dedupSorted(append(append([]uint64{}, cur...), candidate))
	if leavesSingleGap(next) {
		return Selection{SeatIDs: cur, Message: "please do not leave a single empty seat between selected seats"}
	}
	return Selection{Allowed: true, Selected: true, SeatIDs: next}
}

// ValidateSelection validates a complete selection against the same rules and
// returns a *ValidationError describing the first violation.
func ValidateSelection(selected []uint64, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxSeats
	}
	ids := dedupSorted(selected)
	if len(ids) > limit {
		return invalid("seatIds", "at most %d seats may be booked at once", limit)
	}
	if leavesSingleGap(ids) {
		return invalid("seatIds", "selection leaves a single empty seat")
	}
	return nil
}

func leavesSingleGap(sorted []uint64) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] == 2 {
			return true
		}
	}
	return false
}

func dedupSorted(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

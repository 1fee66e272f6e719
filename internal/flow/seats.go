package flow

import (
	"slices"
	"strconv"
	"strings"
)

// seatSet holds the seats picked for one showtime. Order of insertion is
// irrelevant; sorted() gives the order tickets are issued in.
type seatSet map[string]struct{}

func (s seatSet) toggle(seat string) {
	if _, ok := s[seat]; ok {
		delete(s, seat)
		return
	}
	s[seat] = struct{}{}
}

func (s seatSet) sorted() []string {
	out := make([]string, 0, len(s))
	for seat := range s {
		out = append(out, seat)
	}
	SortSeats(out)
	return out
}

// SortSeats orders seat codes by row, then numerically by seat number, so
// that "A2" comes before "A10".
func SortSeats(seats []string) {
	slices.SortFunc(seats, compareSeats)
}

func compareSeats(a, b string) int {
	rowA, numA := splitSeat(a)
	rowB, numB := splitSeat(b)

	if c := strings.Compare(rowA, rowB); c != 0 {
		if len(rowA) != len(rowB) {
			return len(rowA) - len(rowB)
		}
		return c
	}

	if numA != numB {
		return numA - numB
	}

	return strings.Compare(a, b)
}

func splitSeat(seat string) (string, int) {
	i := strings.IndexFunc(seat, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return seat, 0
	}
	n, err := strconv.Atoi(seat[i:])
	if err != nil {
		return seat, 0
	}
	return seat[:i], n
}

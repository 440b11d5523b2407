package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	roomNumberRe = regexp.MustCompile(`^(?i)(?:ch(?:ambre)?\.?\s*)?(\d+)\s*([a-z]?)$`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// RoomNumber is the structured form of a room label such as "07", "115" or "12b".
type RoomNumber struct {
	Value  int
	Suffix string
}

// ParseRoomNumber extracts the numeric part and optional letter suffix of a room label.
func ParseRoomNumber(raw string) (RoomNumber, error) {
	s := strings.TrimSpace(raw)
	s = spaceRe.ReplaceAllString(s, " ")

	m := roomNumberRe.FindStringSubmatch(s)
	if m == nil {
		return RoomNumber{}, fmt.Errorf("unable to parse room number: %q", raw)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return RoomNumber{}, fmt.Errorf("room number %q out of range: %w", raw, err)
	}
	return RoomNumber{Value: n, Suffix: strings.ToLower(m[2])}, nil
}

// LessRoomNumber orders room labels numerically ("9" before "10", "07" before "8").
// Labels that do not parse sort after numeric ones, in plain string order.
func LessRoomNumber(a, b string) bool {
	pa, errA := ParseRoomNumber(a)
	pb, errB := ParseRoomNumber(b)
	switch {
	case errA != nil && errB != nil:
		return a < b
	case errA != nil:
		return false
	case errB != nil:
		return true
	}
	if pa.Value != pb.Value {
		return pa.Value < pb.Value
	}
	return pa.Suffix < pb.Suffix
}

package model

import "time"

// StayType distinguishes short respite stays from permanent residence.
type StayType string

const (
	StayTemporary StayType = "temporary"
	StayPermanent StayType = "permanent"
)

// Valid reports whether t is a known stay type.
func (t StayType) Valid() bool {
	return t == StayTemporary || t == StayPermanent
}

// Stay links a resident to a room for a time interval.
type Stay struct {
	ID         int64     `json:"id"`
	ResidentID int64     `json:"residentId"`
	RoomID     int64     `json:"roomId"`
	StartDate  time.Time `json:"startDate"`
	// EndDate is nil while the stay is in progress.
	EndDate  *time.Time `json:"endDate,omitempty"`
	GIRLevel CareLevel  `json:"girLevel"`
	StayType StayType   `json:"stayType"`
	Notes    string     `json:"notes,omitempty"`
}

// Active reports whether the stay is still in progress.
func (s Stay) Active() bool {
	return s.EndDate == nil
}

// Clone returns a deep copy of s.
func (s Stay) Clone() Stay {
	s.EndDate = cloneTime(s.EndDate)
	return s
}

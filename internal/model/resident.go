package model

import "time"

// Resident holds the identity data of a person cared for by the facility.
type Resident struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// Clone returns a deep copy of r.
func (r Resident) Clone() Resident {
	r.DateOfBirth = cloneTime(r.DateOfBirth)
	return r
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

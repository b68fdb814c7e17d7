package models

import (
	"fmt"
	"strings"
)

// Status is the lifecycle stage of an item. It only moves forward:
// Scanned -> Purchased -> Sold.
type Status string

const (
	StatusScanned   Status = "SCANNED"
	StatusPurchased Status = "PURCHASED"
	StatusSold      Status = "SOLD"
)

func (s Status) rank() int {
	switch s {
	case StatusScanned:
		return 1
	case StatusPurchased:
		return 2
	case StatusSold:
		return 3
	default:
		return 0
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s.rank() > 0
}

// CanAdvanceTo reports whether next is exactly one step after s.
func (s Status) CanAdvanceTo(next Status) bool {
	return s.Valid() && next.rank() == s.rank()+1
}

// Before reports whether s is an earlier lifecycle stage than other.
func (s Status) Before(other Status) bool {
	return s.rank() < other.rank()
}

// ParseStatus accepts backend spelling ("SOLD") as well as lower case
// input ("sold"). Unknown values are an error.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

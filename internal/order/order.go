package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/dhiya-foods/orderboard/internal/enum"
	"github.com/dhiya-foods/orderboard/internal/money"
)

// Errors returned by order construction and the status state machine.
var (
	ErrEmptyOrder         = errors.New("order has no items")
	ErrTotalOverflow      = errors.New("order total overflows")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnrecognizedStatus = errors.New("unrecognized order status")
)

// Status is the lifecycle state of an order. Only Queued can change.
type Status string

const (
	StatusQueued    Status = enum.OrderStatusQueued
	StatusServed    Status = enum.OrderStatusServed
	StatusCancelled Status = enum.OrderStatusCancelled
)

// Date, time and weekday layouts as written to the order medium.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Selection is a raw (item, quantity) pick from the order screen.
type Selection struct {
	Item     string
	Quantity int
}

// Line is an item on a placed order. Prices are not stored per line.
type Line struct {
	Item     string
	Quantity int
}

// CreatedAt is the creation timestamp, split the way the medium stores it.
type CreatedAt struct {
	Date string
	Time string
	Day  string
}

// NewCreatedAt captures t.
func NewCreatedAt(t time.Time) CreatedAt {
	return CreatedAt{
		Date: t.Format(DateLayout),
		Time: t.Format(TimeLayout),
		Day:  t.Weekday().String(),
	}
}

// Record is one placed order. Created by Builder; after that only Status
// changes, and only through the store.
type Record struct {
	ID        string
	CreatedAt CreatedAt
	Lines     []Line
	Total     money.Amount
	Status    Status
}

// WithID returns a copy of r carrying a new id. Used only before the record
// has been persisted, when the store reports a duplicate id.
func (r Record) WithID(id string) Record {
	r.Lines = append([]Line(nil), r.Lines...)
	r.ID = id
	return r
}

// WithStatus returns a copy of r with status s.
func (r Record) WithStatus(s Status) Record {
	r.Lines = append([]Line(nil), r.Lines...)
	r.Status = s
	return r
}

// ParseStatus accepts exactly Queued, Served or Cancelled.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusQueued, StatusServed, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognizedStatus, s)
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusServed || s == StatusCancelled
}

// ValidateTransition allows Queued→Served and Queued→Cancelled only.
func ValidateTransition(from, to Status) error {
	if from != StatusQueued {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, from)
	}
	if to != StatusServed && to != StatusCancelled {
		return fmt.Errorf("%w: cannot move %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

package parking

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type TicketState int

const (
	Parked TicketState = iota
	AwaitingPayment
	Settled
)

func (s TicketState) String() string {
	switch s {
	case Parked:
		return "Parked"
	case AwaitingPayment:
		return "AwaitingPayment"
	case Settled:
		return "Settled"
	default:
		return fmt.Sprintf("TicketState(%d)", int(s))
	}
}

// Ticket records one vehicle's stay from check-in to settlement.
type Ticket struct {
	Token    int
	Vehicle  *Vehicle
	Slots    []int
	CheckIn  time.Time
	CheckOut *time.Time
	Fee      decimal.Decimal
	Plan     string
	Paid     bool
}

func NewTicket(token int, vehicle *Vehicle, slots []int, checkIn time.Time) *Ticket {
	return &Ticket{
		Token:   token,
		Vehicle: vehicle,
		Slots:   slots,
		CheckIn: checkIn,
		Fee:     decimal.Zero,
	}
}

func (t *Ticket) State() TicketState {
	switch {
	case t.Paid:
		return Settled
	case t.CheckOut != nil:
		return AwaitingPayment
	default:
		return Parked
	}
}

// Duration is the time parked so far, or the full stay once checked out.
func (t *Ticket) Duration(now time.Time) time.Duration {
	end := now
	if t.CheckOut != nil {
		end = *t.CheckOut
	}
	return end.Sub(t.CheckIn)
}

// CheckOutAt stamps the exit time. Only a parked ticket can check out.
func (t *Ticket) CheckOutAt(at time.Time) error {
	if t.State() != Parked {
		return fmt.Errorf("%w: ticket %d is %s, cannot check out", ErrInvalidTransition, t.Token, t.State())
	}
	t.CheckOut = &at
	return nil
}

func (t *Ticket) AssignFee(fee decimal.Decimal, plan string) error {
	if t.State() != AwaitingPayment {
		return fmt.Errorf("%w: ticket %d is %s, cannot assign fee", ErrInvalidTransition, t.Token, t.State())
	}
	t.Fee = fee
	t.Plan = plan
	return nil
}

func (t *Ticket) Settle() error {
	if t.State() != AwaitingPayment {
		return fmt.Errorf("%w: ticket %d is %s, cannot settle", ErrInvalidTransition, t.Token, t.State())
	}
	t.Paid = true
	return nil
}

// Snapshot copies the ticket so callers outside the garage lock can read it.
func (t *Ticket) Snapshot() Ticket {
	c := *t
	c.Slots = append([]int(nil), t.Slots...)
	if t.CheckOut != nil {
		out := *t.CheckOut
		c.CheckOut = &out
	}
	if t.Vehicle != nil {
		v := *t.Vehicle
		c.Vehicle = &v
	}
	return c
}

// BillableHours rounds a stay up to whole hours, never less than one.
func BillableHours(d time.Duration) int {
	hours := int(math.Ceil(d.Hours()))
	if hours < 1 {
		return 1
	}
	return hours
}

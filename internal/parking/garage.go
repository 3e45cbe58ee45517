package parking

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"parking-garage/internal/logging"
)

const (
	DefaultTokenBase         = 1500
	DefaultMonthlyPermitBase = 6000
	DefaultSinglePermitBase  = 9000

	PlanMonthly     = "Monthly Subscription — No Charge"
	PlanSingleEntry = "Single Entry Pass — Prepaid"
)

// FeeStrategy prices a stay. It must not depend on garage state.
type FeeStrategy interface {
	ComputeFee(category Category, billableHours int) (decimal.Decimal, string)
}

// PlanNamer is implemented by fee strategies that can name the rate plan
// in force right now.
type PlanNamer interface {
	ActivePlan() string
}

type GarageOptions struct {
	Name           string
	Capacity       int
	Fees           FeeStrategy
	Clock          Clock
	Tokens         *Sequence
	MonthlyPermits *Sequence
	SinglePermits  *Sequence
	Logger         *logrus.Entry
}

// Garage ties the slot registry, tickets and passes together. Every
// operation runs under one lock and either completes or changes nothing.
type Garage struct {
	mu sync.Mutex

	name     string
	registry *SlotRegistry
	passes   *PassStore
	fees     FeeStrategy
	clock    Clock
	log      *logrus.Entry

	tokens         *Sequence
	monthlyPermits *Sequence
	singlePermits  *Sequence

	active  map[string]*Ticket
	history []*Ticket
}

type CheckInResult struct {
	Ticket       Ticket
	HasValidPass bool
}

type Location struct {
	Plate  string
	Slots  []int
	Ticket *Ticket
}

func NewGarage(opts GarageOptions) (*Garage, error) {
	if opts.Capacity <= 0 {
		return nil, fmt.Errorf("garage capacity must be positive, got %d", opts.Capacity)
	}
	if opts.Fees == nil {
		return nil, errors.New("garage needs a fee strategy")
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Tokens == nil {
		opts.Tokens = NewSequence(DefaultTokenBase)
	}
	if opts.MonthlyPermits == nil {
		opts.MonthlyPermits = NewSequence(DefaultMonthlyPermitBase)
	}
	if opts.SinglePermits == nil {
		opts.SinglePermits = NewSequence(DefaultSinglePermitBase)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Logger()
	}

	return &Garage{
		name:           opts.Name,
		registry:       NewSlotRegistry(opts.Capacity, opts.Clock),
		passes:         NewPassStore(),
		fees:           opts.Fees,
		clock:          opts.Clock,
		log:            opts.Logger.WithField("garage", opts.Name),
		tokens:         opts.Tokens,
		monthlyPermits: opts.MonthlyPermits,
		singlePermits:  opts.SinglePermits,
		active:         make(map[string]*Ticket),
	}, nil
}

func normalizePlate(plate string) (string, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return "", ErrInvalidPlate
	}
	return plate, nil
}

func (g *Garage) Name() string {
	return g.name
}

func (g *Garage) Capacity() int {
	return g.registry.Capacity()
}

func (g *Garage) CheckIn(plate, category string) (CheckInResult, error) {
	plate, err := normalizePlate(plate)
	if err != nil {
		return CheckInResult{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.active[plate]; ok {
		return CheckInResult{}, fmt.Errorf("%w: %s", ErrDuplicateActiveSession, plate)
	}

	cat, err := ParseCategory(category)
	if err != nil {
		return CheckInResult{}, err
	}

	needed := cat.SlotsRequired()
	if free := g.registry.FreeCount(); free < needed {
		return CheckInResult{}, fmt.Errorf("%w: needed %d, available %d", ErrInsufficientCapacity, needed, free)
	}

	vehicle := NewVehicle(plate, cat)
	slots, err := g.registry.Allocate(needed, vehicle)
	if err != nil {
		if errors.Is(err, ErrAllocationConsistency) {
			g.log.WithError(err).WithField("plate", plate).Error("slot reservation hit an occupied slot")
		}
		return CheckInResult{}, err
	}

	now := g.clock.Now()
	ticket := NewTicket(g.tokens.Next(), vehicle, slots, now)
	g.active[plate] = ticket

	hasPass := g.hasValidSubscription(plate, now)

	g.log.WithFields(logrus.Fields{
		"plate":    plate,
		"category": cat.String(),
		"token":    ticket.Token,
		"slots":    slots,
		"has_pass": hasPass,
	}).Info("vehicle checked in")

	return CheckInResult{Ticket: ticket.Snapshot(), HasValidPass: hasPass}, nil
}

// CheckOut stamps the exit and prices the stay. The vehicle keeps its slots
// until ConfirmPayment.
func (g *Garage) CheckOut(plate string) (Ticket, decimal.Decimal, error) {
	plate, err := normalizePlate(plate)
	if err != nil {
		return Ticket{}, decimal.Zero, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ticket, ok := g.active[plate]
	if !ok {
		return Ticket{}, decimal.Zero, fmt.Errorf("%w: %s", ErrNoActiveSession, plate)
	}
	if ticket.State() != Parked {
		return Ticket{}, decimal.Zero, fmt.Errorf("%w: ticket %d already checked out", ErrInvalidTransition, ticket.Token)
	}

	now := g.clock.Now()
	fee, plan := g.departureFee(ticket, now)

	if err := ticket.CheckOutAt(now); err != nil {
		return Ticket{}, decimal.Zero, err
	}
	if err := ticket.AssignFee(fee, plan); err != nil {
		return Ticket{}, decimal.Zero, err
	}

	g.log.WithFields(logrus.Fields{
		"plate": plate,
		"token": ticket.Token,
		"fee":   fee.StringFixed(2),
		"plan":  plan,
	}).Info("vehicle checked out")

	return ticket.Snapshot(), fee, nil
}

func (g *Garage) departureFee(ticket *Ticket, now time.Time) (decimal.Decimal, string) {
	plate := ticket.Vehicle.Plate

	if g.passes.Valid(MonthlyPass, plate, now) {
		return decimal.Zero, PlanMonthly
	}
	if g.passes.Redeem(plate, now) {
		return decimal.Zero, PlanSingleEntry
	}

	hours := BillableHours(now.Sub(ticket.CheckIn))
	return g.fees.ComputeFee(ticket.Vehicle.Category, hours)
}

// ConfirmPayment settles a checked-out ticket, frees its slots and files it
// in history. It is the only path that returns slots to the pool.
func (g *Garage) ConfirmPayment(plate string) (Ticket, error) {
	plate, err := normalizePlate(plate)
	if err != nil {
		return Ticket{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ticket, ok := g.active[plate]
	if !ok {
		return Ticket{}, fmt.Errorf("%w: %s", ErrNoActiveSession, plate)
	}
	if err := ticket.Settle(); err != nil {
		return Ticket{}, err
	}

	g.registry.Release(ticket.Slots)
	g.history = append(g.history, ticket)
	delete(g.active, plate)

	g.log.WithFields(logrus.Fields{
		"plate": plate,
		"token": ticket.Token,
		"paid":  ticket.Fee.StringFixed(2),
	}).Info("payment confirmed")

	return ticket.Snapshot(), nil
}

func (g *Garage) HasValidSubscription(plate string) bool {
	plate, err := normalizePlate(plate)
	if err != nil {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hasValidSubscription(plate, g.clock.Now())
}

func (g *Garage) hasValidSubscription(plate string, now time.Time) bool {
	return g.passes.Valid(MonthlyPass, plate, now) || g.passes.Valid(SingleEntryPass, plate, now)
}

func (g *Garage) BuyMonthlyPass(plate, category string) (Pass, error) {
	return g.buyPass(MonthlyPass, g.monthlyPermits, plate, category)
}

func (g *Garage) BuySingleEntryPass(plate, category string) (Pass, error) {
	return g.buyPass(SingleEntryPass, g.singlePermits, plate, category)
}

func (g *Garage) buyPass(kind PassKind, seq *Sequence, plate, category string) (Pass, error) {
	plate, err := normalizePlate(plate)
	if err != nil {
		return Pass{}, err
	}
	cat, err := ParseCategory(category)
	if err != nil {
		return Pass{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	pass := NewPass(kind, seq.Next(), plate, cat, g.clock.Now())
	g.passes.Put(pass)

	g.log.WithFields(logrus.Fields{
		"plate":     plate,
		"permit_id": pass.PermitID,
		"kind":      kind.String(),
		"price":     pass.Price.StringFixed(2),
	}).Info("pass issued")

	return *pass, nil
}

// Passes returns the plate's monthly and single-entry passes, if any.
func (g *Garage) Passes(plate string) []Pass {
	plate, err := normalizePlate(plate)
	if err != nil {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var out []Pass
	for _, kind := range []PassKind{MonthlyPass, SingleEntryPass} {
		if p, ok := g.passes.Get(kind, plate); ok {
			out = append(out, *p)
		}
	}
	return out
}

// Locate finds the slots a vehicle is parked in.
func (g *Garage) Locate(plate string) (Location, error) {
	plate, err := normalizePlate(plate)
	if err != nil {
		return Location{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	slots := g.registry.Locate(plate)
	if len(slots) == 0 {
		return Location{}, fmt.Errorf("%w: %s is not in the facility", ErrNoActiveSession, plate)
	}

	loc := Location{Plate: plate, Slots: slots}
	if ticket, ok := g.active[plate]; ok {
		snap := ticket.Snapshot()
		loc.Ticket = &snap
	}
	return loc, nil
}

func (g *Garage) Status() StatusSummary {
	return g.registry.Status()
}

func (g *Garage) Slots() []Slot {
	return g.registry.Slots()
}

// ActiveTickets returns tickets not yet settled, by token.
func (g *Garage) ActiveTickets() []Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Ticket, 0, len(g.active))
	for _, t := range g.active {
		out = append(out, t.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Token < out[j].Token
	})
	return out
}

// History returns settled tickets in settlement order.
func (g *Garage) History() []Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Ticket, len(g.history))
	for i, t := range g.history {
		out[i] = t.Snapshot()
	}
	return out
}

// ActivePlan names the rate plan in force, when the fee strategy knows it.
func (g *Garage) ActivePlan() string {
	if namer, ok := g.fees.(PlanNamer); ok {
		return namer.ActivePlan()
	}
	return ""
}

func (g *Garage) Now() time.Time {
	return g.clock.Now()
}

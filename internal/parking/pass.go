package parking

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type PassKind int

const (
	MonthlyPass PassKind = iota + 1
	SingleEntryPass
)

type passTerms struct {
	title  string
	prefix string
	term   time.Duration
	prices map[Category]decimal.Decimal
}

var passCatalog = map[PassKind]passTerms{
	MonthlyPass: {
		title:  "Monthly Pass",
		prefix: "MP",
		term:   30 * 24 * time.Hour,
		prices: map[Category]decimal.Decimal{
			Car:        decimal.NewFromInt(150),
			Motorcycle: decimal.NewFromInt(75),
			Truck:      decimal.NewFromInt(250),
			Bus:        decimal.NewFromInt(300),
		},
	},
	SingleEntryPass: {
		title:  "Single Entry Pass",
		prefix: "SE",
		term:   24 * time.Hour,
		prices: map[Category]decimal.Decimal{
			Car:        decimal.NewFromInt(15),
			Motorcycle: decimal.NewFromInt(8),
			Truck:      decimal.NewFromInt(25),
			Bus:        decimal.NewFromInt(30),
		},
	},
}

func (k PassKind) String() string {
	if terms, ok := passCatalog[k]; ok {
		return terms.title
	}
	return fmt.Sprintf("PassKind(%d)", int(k))
}

// Price is what the pass costs for the category.
func (k PassKind) Price(c Category) decimal.Decimal {
	return passCatalog[k].prices[c]
}

// Pass is a prepaid exemption from the per-visit fee. Validity is never
// cached: every query recomputes it from the clock and the flags.
type Pass struct {
	PermitID    string
	Kind        PassKind
	Plate       string
	Category    Category
	ActivatedAt time.Time
	ExpiresAt   time.Time
	Price       decimal.Decimal
	Active      bool
	Redeemed    bool
}

func NewPass(kind PassKind, seq int, plate string, category Category, at time.Time) *Pass {
	terms := passCatalog[kind]
	return &Pass{
		PermitID:    fmt.Sprintf("%s-%d", terms.prefix, seq),
		Kind:        kind,
		Plate:       plate,
		Category:    category,
		ActivatedAt: at,
		ExpiresAt:   at.Add(terms.term),
		Price:       kind.Price(category),
		Active:      true,
	}
}

func (p *Pass) IsValid(now time.Time) bool {
	if !p.Active || now.After(p.ExpiresAt) {
		return false
	}
	if p.Kind == SingleEntryPass && p.Redeemed {
		return false
	}
	return true
}

// Redeem consumes a single-entry pass. It reports false when the pass is
// not a valid single-entry pass at now.
func (p *Pass) Redeem(now time.Time) bool {
	if p.Kind != SingleEntryPass || !p.IsValid(now) {
		return false
	}
	p.Redeemed = true
	return true
}

func (p *Pass) Suspend() {
	p.Active = false
}

// Status is the display label: Active, Used or Expired.
func (p *Pass) Status(now time.Time) string {
	switch {
	case p.Kind == SingleEntryPass && p.Redeemed:
		return "Used"
	case p.IsValid(now):
		return "Active"
	default:
		return "Expired"
	}
}

// RemainingDays is whole days left on a valid pass, zero otherwise.
func (p *Pass) RemainingDays(now time.Time) int {
	if !p.IsValid(now) {
		return 0
	}
	return int(p.ExpiresAt.Sub(now) / (24 * time.Hour))
}

// PassStore keeps at most one monthly and one single-entry pass per plate.
// Buying again replaces the earlier pass of the same kind.
type PassStore struct {
	mu      sync.Mutex
	monthly map[string]*Pass
	single  map[string]*Pass
}

func NewPassStore() *PassStore {
	return &PassStore{
		monthly: make(map[string]*Pass),
		single:  make(map[string]*Pass),
	}
}

func (s *PassStore) byKind(kind PassKind) map[string]*Pass {
	if kind == MonthlyPass {
		return s.monthly
	}
	return s.single
}

func (s *PassStore) Put(p *Pass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKind(p.Kind)[p.Plate] = p
}

func (s *PassStore) Get(kind PassKind, plate string) (*Pass, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byKind(kind)[plate]
	return p, ok
}

// Valid reports whether the plate holds a valid pass of the kind at now.
func (s *PassStore) Valid(kind PassKind, plate string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byKind(kind)[plate]
	return ok && p.IsValid(now)
}

// Redeem consumes the plate's single-entry pass if it is still valid.
func (s *PassStore) Redeem(plate string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.single[plate]
	return ok && p.Redeem(now)
}

// CountValid counts passes of the kind that are valid at now.
func (s *PassStore) CountValid(kind PassKind, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.byKind(kind) {
		if p.IsValid(now) {
			n++
		}
	}
	return n
}

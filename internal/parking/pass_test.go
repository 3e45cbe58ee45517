package parking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var activation = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func TestNewPassTerms(t *testing.T) {
	monthly := NewPass(MonthlyPass, 6001, "ABC1", Truck, activation)
	if monthly.PermitID != "MP-6001" {
		t.Errorf("Expected MP-6001, got %s", monthly.PermitID)
	}
	if !monthly.ExpiresAt.Equal(activation.Add(30 * 24 * time.Hour)) {
		t.Errorf("Expected 30 day term, got expiry %v", monthly.ExpiresAt)
	}
	if !monthly.Price.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected truck monthly price 250, got %s", monthly.Price)
	}

	single := NewPass(SingleEntryPass, 9001, "ABC1", Motorcycle, activation)
	if single.PermitID != "SE-9001" {
		t.Errorf("Expected SE-9001, got %s", single.PermitID)
	}
	if !single.ExpiresAt.Equal(activation.Add(24 * time.Hour)) {
		t.Errorf("Expected 24 hour term, got expiry %v", single.ExpiresAt)
	}
	if !single.Price.Equal(decimal.NewFromInt(8)) {
		t.Errorf("Expected motorcycle single-entry price 8, got %s", single.Price)
	}
}

func TestMonthlyPassValidity(t *testing.T) {
	p := NewPass(MonthlyPass, 6001, "ABC1", Car, activation)

	if !p.IsValid(activation.Add(29 * 24 * time.Hour)) {
		t.Error("Expected pass valid inside its term")
	}
	if !p.IsValid(p.ExpiresAt) {
		t.Error("Expected pass valid at its expiry instant")
	}
	if p.IsValid(p.ExpiresAt.Add(time.Second)) {
		t.Error("Expected pass invalid after expiry")
	}
	if p.Redeem(activation) {
		t.Error("Expected monthly pass not to be redeemable")
	}
	if got := p.RemainingDays(activation.Add(36 * time.Hour)); got != 28 {
		t.Errorf("Expected 28 remaining days, got %d", got)
	}

	p.Suspend()
	if p.IsValid(activation) {
		t.Error("Expected suspended pass to be invalid")
	}
	if p.Status(activation) != "Expired" {
		t.Errorf("Expected Expired status, got %s", p.Status(activation))
	}
}

func TestSingleEntryPassRedeemsOnce(t *testing.T) {
	p := NewPass(SingleEntryPass, 9001, "ABC1", Car, activation)
	now := activation.Add(time.Hour)

	if p.Status(now) != "Active" {
		t.Errorf("Expected Active status, got %s", p.Status(now))
	}
	if !p.Redeem(now) {
		t.Fatal("Expected first redemption to succeed")
	}

	for _, later := range []time.Time{now, now.Add(time.Minute), now.Add(2 * time.Hour)} {
		if p.IsValid(later) {
			t.Errorf("Expected redeemed pass to be invalid at %v", later)
		}
	}
	if p.Redeem(now) {
		t.Error("Expected second redemption to fail")
	}
	if p.Status(now) != "Used" {
		t.Errorf("Expected Used status, got %s", p.Status(now))
	}
}

func TestSingleEntryPassExpiredCannotRedeem(t *testing.T) {
	p := NewPass(SingleEntryPass, 9001, "ABC1", Car, activation)
	if p.Redeem(activation.Add(25 * time.Hour)) {
		t.Error("Expected expired pass not to redeem")
	}
	if p.Redeemed {
		t.Error("Expected failed redemption to leave the flag unset")
	}
}

func TestPassStore(t *testing.T) {
	store := NewPassStore()
	store.Put(NewPass(MonthlyPass, 6001, "ABC1", Car, activation))
	store.Put(NewPass(SingleEntryPass, 9001, "ABC1", Car, activation))
	store.Put(NewPass(SingleEntryPass, 9002, "XYZ9", Bus, activation))

	now := activation.Add(time.Hour)
	if !store.Valid(MonthlyPass, "ABC1", now) || !store.Valid(SingleEntryPass, "ABC1", now) {
		t.Error("Expected both passes valid for ABC1")
	}
	if store.Valid(MonthlyPass, "XYZ9", now) {
		t.Error("Expected no monthly pass for XYZ9")
	}
	if got := store.CountValid(SingleEntryPass, now); got != 2 {
		t.Errorf("Expected 2 valid single-entry passes, got %d", got)
	}

	if !store.Redeem("XYZ9", now) {
		t.Fatal("Expected redemption to succeed")
	}
	if store.Redeem("XYZ9", now) {
		t.Error("Expected second redemption to fail")
	}
	if got := store.CountValid(SingleEntryPass, now); got != 1 {
		t.Errorf("Expected 1 valid single-entry pass, got %d", got)
	}

	store.Put(NewPass(SingleEntryPass, 9003, "XYZ9", Bus, now))
	if !store.Valid(SingleEntryPass, "XYZ9", now) {
		t.Error("Expected a fresh pass to replace the used one")
	}
}

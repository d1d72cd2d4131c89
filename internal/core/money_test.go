package core

import "testing"

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatal("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); err == nil {
		t.Fatal("expected error for negative")
	}
}

func TestMoneyAbs(t *testing.T) {
	if got := (Money{Cents: -250}).Abs(); got.Cents != 250 {
		t.Errorf("Abs(-250) = %d", got.Cents)
	}
	if got := (Money{Cents: 250}).Abs(); got.Cents != 250 {
		t.Errorf("Abs(250) = %d", got.Cents)
	}
}

func TestMoneyUnits(t *testing.T) {
	if got := (Money{Cents: 1234}).Units(); got != 12.34 {
		t.Errorf("Units(1234) = %v, want 12.34", got)
	}
	if got := (Money{Cents: -50}).Units(); got != -0.5 {
		t.Errorf("Units(-50) = %v, want -0.5", got)
	}
}

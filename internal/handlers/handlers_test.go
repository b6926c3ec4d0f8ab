package handlers

import (
	"testing"

	"example.com/aura-analytics/backend/internal/models"
)

// TestParseFeeFields проверяет нормализацию полей таксы.
func TestParseFeeFields(t *testing.T) {
	name, feeType, err := parseFeeFields("  Gateway  ", "percentage")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if name != "Gateway" {
		t.Fatalf("expected trimmed name, got %q", name)
	}
	if feeType != models.FeeTypePercentage {
		t.Fatalf("expected percentage type, got %s", feeType)
	}

	if _, _, err := parseFeeFields("   ", "fixed"); err == nil {
		t.Fatal("expected error for blank name")
	}

	if _, _, err := parseFeeFields("Gateway", "weekly"); err == nil {
		t.Fatal("expected error for unknown fee type")
	}
}

// TestParseDeadline проверяет разбор дедлайна цели.
func TestParseDeadline(t *testing.T) {
	if deadline, err := parseDeadline(nil); err != nil || deadline != nil {
		t.Fatalf("expected nil deadline, got %v %v", deadline, err)
	}

	blank := "   "
	if deadline, err := parseDeadline(&blank); err != nil || deadline != nil {
		t.Fatalf("expected blank deadline to be dropped, got %v %v", deadline, err)
	}

	valid := "2026-03-01"
	deadline, err := parseDeadline(&valid)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deadline == nil || *deadline != valid {
		t.Fatalf("expected %q, got %v", valid, deadline)
	}

	invalid := "01/03/2026"
	if _, err := parseDeadline(&invalid); err == nil {
		t.Fatal("expected error for non-ISO deadline")
	}
}

// TestToSyntheticSale проверяет значения по умолчанию синтетической продажи.
func TestToSyntheticSale(t *testing.T) {
	sale := toSyntheticSale(SimulateRequest{Amount: 100, InvestedAmount: 30})
	if !sale.ApplyFees {
		t.Fatal("expected fees applied by default")
	}
	if sale.ID == "" {
		t.Fatal("expected non-empty id")
	}
	if sale.Amount != 100 || sale.InvestedAmount != 30 {
		t.Fatalf("unexpected synthetic sale: %+v", sale)
	}

	exempt := false
	sale = toSyntheticSale(SimulateRequest{Amount: 50, ApplyFees: &exempt})
	if sale.ApplyFees {
		t.Fatal("expected explicit exemption to be kept")
	}
}

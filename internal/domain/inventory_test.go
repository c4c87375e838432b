package domain

import (
	"errors"
	"testing"
)

func TestThresholds(t *testing.T) {
	th := Thresholds{ProductTypeFood: 10}

	if v, err := th.Threshold(ProductTypeFood); err != nil || v != 10 {
		t.Errorf("Threshold(Food) = %d, %v", v, err)
	}
	if _, err := th.Threshold(ProductTypeClothing); !errors.Is(err, ErrThresholdMissing) {
		t.Errorf("Threshold(Clothing) error = %v, want ErrThresholdMissing", err)
	}
	if v, _ := UniformThreshold(5).Threshold(ProductTypeGeneric); v != 5 {
		t.Errorf("UniformThreshold(5) = %d", v)
	}
}

func TestAuditEntry_String(t *testing.T) {
	p := &Product{ID: 3, Name: "Milk"}
	e := AuditEntry{Seq: 7, Action: AuditActionAdd, Subject: ProductSubject(p), Quantity: 2}

	want := "Log 7 [Time: 0001-01-01T00:00:00Z, Action: Add, Object: product#3(Milk), Quantity: 2]"
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

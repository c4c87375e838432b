package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/MorseWayne/stockroom/internal/domain"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&domain.InsufficientStockError{}, "insufficient_stock"},
		{fmt.Errorf("wrapped: %w", &domain.NotFoundError{Kind: "product", ID: 1}), "not_found"},
		{&domain.ValidationError{Field: "name"}, "validation"},
		{&domain.InvalidSupplierFieldError{Field: "contact"}, "invalid_supplier_field"},
		{domain.ErrInvalidOrderType, "invalid_order_type"},
		{fmt.Errorf("x: %w", domain.ErrOrderExecuted), "order_executed"},
		{domain.ErrThresholdMissing, "threshold_missing"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordMutation(domain.AuditActionAdd)
	m.RecordMutation(domain.AuditActionAdd)
	m.RecordExecution(domain.OrderTypeSale, nil)
	m.RecordExecution(domain.OrderTypeSale, &domain.InsufficientStockError{})
	m.RecordFailure("add_product", &domain.ValidationError{})
	m.SetProducts(7)

	if got := testutil.ToFloat64(m.Mutations.WithLabelValues("Add")); got != 2 {
		t.Errorf("mutations_total{Add} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Executions.WithLabelValues("Sale", "insufficient_stock")); got != 1 {
		t.Errorf("order_executions_total{Sale,insufficient_stock} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Failures.WithLabelValues("add_product", "validation")); got != 1 {
		t.Errorf("operation_failures_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Products); got != 7 {
		t.Errorf("catalog_products = %v, want 7", got)
	}

	if n, err := testutil.GatherAndCount(reg, "stockroom_mutations_total"); err != nil || n != 1 {
		t.Errorf("GatherAndCount() = %d, %v", n, err)
	}
}

package service

import (
	"iter"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MorseWayne/stockroom/internal/domain"
	"github.com/MorseWayne/stockroom/internal/metrics"
	"github.com/MorseWayne/stockroom/internal/repo"
)

// mockAuditRepository is an in-memory audit log with a fixed clock so that
// entries can be asserted field by field.
type mockAuditRepository struct {
	entries []domain.AuditEntry
	now     time.Time
}

func newMockAuditRepository() *mockAuditRepository {
	return &mockAuditRepository{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *mockAuditRepository) Record(subject domain.Subject, action domain.AuditAction, quantity int, reason string) domain.AuditEntry {
	entry := domain.AuditEntry{
		Seq:       uint64(len(m.entries)) + 1,
		Timestamp: m.now,
		Action:    action,
		Subject:   subject,
		Quantity:  quantity,
		Reason:    reason,
	}
	m.entries = append(m.entries, entry)
	return entry
}

func (m *mockAuditRepository) History() iter.Seq[domain.AuditEntry] {
	return func(yield func(domain.AuditEntry) bool) {
		for _, e := range m.entries {
			if !yield(e) {
				return
			}
		}
	}
}

func (m *mockAuditRepository) Len() int {
	return len(m.entries)
}

func (m *mockAuditRepository) last() domain.AuditEntry {
	return m.entries[len(m.entries)-1]
}

// testEnv bundles a service with the collaborators tests need to inspect.
type testEnv struct {
	svc     InventoryService
	audit   *mockAuditRepository
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	audit := newMockAuditRepository()
	m := metrics.NewNop()
	svc := NewInventoryService(
		repo.NewProductRepository(),
		repo.NewOrderRepository(),
		repo.NewSupplierRepository(),
		audit,
		zap.NewNop(),
		m,
	)
	return &testEnv{svc: svc, audit: audit, metrics: m}
}

func (e *testEnv) addGeneric(t *testing.T, name string, price int64, quantity int) *domain.Product {
	t.Helper()
	p, err := domain.NewGeneric(name, decimal.NewFromInt(price), quantity)
	if err != nil {
		t.Fatalf("NewGeneric(%q) failed: %v", name, err)
	}
	stored, err := e.svc.AddProduct(p)
	if err != nil {
		t.Fatalf("AddProduct(%q) failed: %v", name, err)
	}
	return stored
}

func (e *testEnv) addFood(t *testing.T, name string, quantity int, expiry time.Time) *domain.Product {
	t.Helper()
	p, err := domain.NewFood(name, decimal.NewFromInt(2), quantity, time.Now(), "")
	if err != nil {
		t.Fatalf("NewFood(%q) failed: %v", name, err)
	}
	// expiry is set after construction so tests can seed already expired food
	p.Food.ExpiryDate = expiry
	stored, err := e.svc.AddProduct(p)
	if err != nil {
		t.Fatalf("AddProduct(%q) failed: %v", name, err)
	}
	return stored
}

func (e *testEnv) quantity(t *testing.T, id int64) int {
	t.Helper()
	p, err := e.svc.GetProduct(id)
	if err != nil {
		t.Fatalf("GetProduct(%d) failed: %v", id, err)
	}
	return p.Quantity
}

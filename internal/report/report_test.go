package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MorseWayne/stockroom/internal/cache"
	"github.com/MorseWayne/stockroom/internal/domain"
	"github.com/MorseWayne/stockroom/internal/metrics"
	"github.com/MorseWayne/stockroom/internal/service"
)

// countingCache wraps a cache and counts lookups that were served.
type countingCache struct {
	cache.Cache
	hits int
	sets int
}

func (c *countingCache) Get(ctx context.Context, key string, dest interface{}) error {
	err := c.Cache.Get(ctx, key, dest)
	if err == nil {
		c.hits++
	}
	return err
}

func (c *countingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets++
	return c.Cache.Set(ctx, key, value, ttl)
}

func newSeededService(t *testing.T) service.InventoryService {
	t.Helper()
	svc := service.NewInMemoryInventoryService(zap.NewNop(), metrics.NewNop())
	if _, err := service.SeedSampleInventory(svc); err != nil {
		t.Fatalf("SeedSampleInventory() error = %v", err)
	}
	return svc
}

func TestGenerator_Generate(t *testing.T) {
	svc := newSeededService(t)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	cc := &countingCache{Cache: cache.NewMemoryCache()}
	g := NewGenerator(svc, nil, WithCache(cc, time.Minute), WithClock(func() time.Time { return now }))

	text, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, want := range []string{
		"=== INVENTORY REPORT ===",
		"Total Products: 2",
		"Total Value Of Inventory: 34.00",
		"--- Generic (2) ---",
		"=== LOW STOCK ALERT ===",
		"#1 samsunG: 2 in stock, threshold 5",
		"#2 Gore: 3 in stock, threshold 5",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "EXPIRED") {
		t.Error("report should not list an expired section")
	}

	// unchanged state is served from cache
	again, _ := g.Generate(context.Background())
	if again != text || cc.hits != 1 {
		t.Errorf("second Generate() hits = %d, want 1", cc.hits)
	}

	// a mutation changes the key
	svc.AdjustStock(1, 10, "delivery")
	updated, _ := g.Generate(context.Background())
	if cc.hits != 1 || cc.sets != 2 {
		t.Errorf("after mutation hits = %d sets = %d, want 1 and 2", cc.hits, cc.sets)
	}
	if strings.Contains(updated, "samsunG: 2 in stock") {
		t.Error("report after mutation should not be stale")
	}
}

func TestGenerator_SharedCacheIsolatesServices(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	shared := cache.NewMemoryCache()
	clock := WithClock(func() time.Time { return now })

	first := service.NewInMemoryInventoryService(zap.NewNop(), metrics.NewNop())
	second := service.NewInMemoryInventoryService(zap.NewNop(), metrics.NewNop())
	if first.InstanceID() == second.InstanceID() {
		t.Fatal("services should get distinct instance ids")
	}

	// same audit length and date in both services
	apple, _ := domain.NewGeneric("Apple", decimal.NewFromInt(1), 10)
	first.AddProduct(apple)
	pear, _ := domain.NewGeneric("Pear", decimal.NewFromInt(2), 20)
	second.AddProduct(pear)

	a, err := NewGenerator(first, nil, WithCache(shared, time.Minute), WithKeyPrefix("stockroom:report"), clock).
		Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate(first) error = %v", err)
	}
	b, err := NewGenerator(second, nil, WithCache(shared, time.Minute), WithKeyPrefix("stockroom:report"), clock).
		Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate(second) error = %v", err)
	}

	if !strings.Contains(a, "Apple") || strings.Contains(a, "Pear") {
		t.Errorf("first report:\n%s", a)
	}
	if !strings.Contains(b, "Pear") || strings.Contains(b, "Apple") {
		t.Errorf("second report served another service's cache entry:\n%s", b)
	}
}

func TestGenerator_SnapshotMatchesQueries(t *testing.T) {
	svc := newSeededService(t)
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	g := NewGenerator(svc, nil)

	snap, err := g.Snapshot(now)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap.Products) != 2 || len(snap.LowStock) != 2 || len(snap.Groups) != 1 {
		t.Errorf("snapshot = %d products, %d alerts, %d groups", len(snap.Products), len(snap.LowStock), len(snap.Groups))
	}
	if !snap.TotalValue.Equal(svc.InventoryValue()) {
		t.Errorf("TotalValue = %s, want %s", snap.TotalValue, svc.InventoryValue())
	}

	snap.Products[0].Quantity = 1000
	if p, _ := svc.GetProduct(snap.Products[0].ID); p.Quantity == 1000 {
		t.Error("snapshot shares products with the catalog")
	}
}

func TestGenerator_MissingThreshold(t *testing.T) {
	svc := newSeededService(t)
	g := NewGenerator(svc, domain.Thresholds{domain.ProductTypeFood: 1})

	if _, err := g.Generate(context.Background()); err == nil {
		t.Error("Generate() should fail when a product type has no threshold")
	}
}

func TestRender_Variants(t *testing.T) {
	expiry := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	phone := &domain.Product{ID: 1, Type: domain.ProductTypeElectronics, Name: "Phone", Price: decimal.NewFromInt(500), Quantity: 2,
		Info: "5G", Electronics: &domain.ElectronicsDetails{WarrantyMonths: 24}}
	jeans := &domain.Product{ID: 2, Type: domain.ProductTypeClothing, Name: "Jeans", Price: decimal.NewFromInt(40), Quantity: 9,
		Clothing: &domain.ClothingDetails{Size: "M", Material: "cotton"}}
	bread := &domain.Product{ID: 3, Type: domain.ProductTypeFood, Name: "Bread", Price: decimal.RequireFromString("1.5"), Quantity: 1,
		Food: &domain.FoodDetails{ExpiryDate: expiry}}

	text := Render(&Snapshot{
		GeneratedAt: expiry.AddDate(0, 0, 3),
		Products:    []*domain.Product{phone, jeans, bread},
		Groups: []domain.TypeGroup{
			{Type: domain.ProductTypeElectronics, Products: []*domain.Product{phone}},
			{Type: domain.ProductTypeClothing, Products: []*domain.Product{jeans}},
			{Type: domain.ProductTypeFood, Products: []*domain.Product{bread}},
		},
		Expired:    []*domain.Product{bread},
		TotalValue: domain.TotalValue([]*domain.Product{phone, jeans, bread}),
	})

	for _, want := range []string{
		"#1 Phone | price 500.00 | qty 2 | warranty 24m | 5G",
		"#2 Jeans | price 40.00 | qty 9 | M cotton",
		"#3 Bread | price 1.50 | qty 1 | expires 2024-01-02",
		"Total Value Of Inventory: 1361.50",
		"=== EXPIRED PRODUCTS ===",
		"#3 Bread: expired 2024-01-02",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("render missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "LOW STOCK") {
		t.Error("no low stock section expected")
	}
}

package repo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MorseWayne/stockroom/internal/domain"
)

func TestSupplierRepo_RegisterAndFind(t *testing.T) {
	r := NewSupplierRepository()

	first, _ := domain.NewSupplier("Acme", "a@x")
	second, _ := domain.NewSupplier("ACME", "b@x")
	a, err := r.Register(first)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	b, _ := r.Register(second)
	if a.ID != 1 || b.ID != 2 {
		t.Errorf("IDs = %d, %d, want 1, 2", a.ID, b.ID)
	}

	got, err := r.GetByName("acme")
	if err != nil || got.ID != a.ID {
		t.Errorf("GetByName(acme) = %v, %v, want first registered", got, err)
	}
	if _, err := r.GetByID(3); !domain.IsNotFound(err) {
		t.Errorf("GetByID(3) error = %v, want NotFoundError", err)
	}
	if _, err := r.Register(&domain.Supplier{Name: "NoContact"}); err == nil {
		t.Error("Register() without contact should fail")
	}
}

func TestSupplierRepo_ListByProductType(t *testing.T) {
	products := NewProductRepository()
	phone, _ := domain.NewElectronics("Phone", decimal.NewFromInt(100), 1, 12, "")
	bread, _ := domain.NewFood("Bread", decimal.NewFromInt(1), 1, time.Now(), "")
	cake, _ := domain.NewFood("Cake", decimal.NewFromInt(5), 1, time.Now(), "")
	products.Add(phone)
	products.Add(bread)
	products.Add(cake)

	r := NewSupplierRepository()
	bakery, _ := domain.NewSupplier("Bakery", "b@x")
	bakery.AddProducts(bread.ID, cake.ID)
	tech, _ := domain.NewSupplier("Tech", "t@x")
	tech.AddProducts(phone.ID)
	r.Register(bakery)
	r.Register(tech)

	food := r.ListByProductType(domain.ProductTypeFood, products)
	if len(food) != 1 || food[0].Name != "Bakery" {
		t.Errorf("ListByProductType(Food) = %v, want Bakery once", food)
	}

	products.Delete(phone.ID)
	if n := len(r.ListByProductType(domain.ProductTypeElectronics, products)); n != 0 {
		t.Errorf("removed products should not match, got %d suppliers", n)
	}
}

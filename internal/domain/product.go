// Package domain 定义商品相关的业务领域模型和核心业务规则。
package domain

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductType 定义商品类型（封闭集合）
type ProductType string

const (
	ProductTypeElectronics ProductType = "Electronics" // 电子产品
	ProductTypeClothing    ProductType = "Clothing"    // 服装
	ProductTypeFood        ProductType = "Food"        // 食品
	ProductTypeGeneric     ProductType = "Generic"     // 普通商品
)

// ProductTypes 返回所有商品类型
func ProductTypes() []ProductType {
	return []ProductType{ProductTypeElectronics, ProductTypeClothing, ProductTypeFood, ProductTypeGeneric}
}

// ParseProductType 解析商品类型名称，大小写不敏感
func ParseProductType(s string) (ProductType, error) {
	for _, t := range ProductTypes() {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", invalid("type", "unknown product type "+s)
}

// 服装尺码与材质的可选值
var (
	ClothingSizes     = []string{"XS", "S", "M", "L", "XL", "XXL"}
	ClothingMaterials = []string{"cotton", "silk", "leather", "linen", "wool", "hemp"}
)

// ElectronicsDetails 电子产品专有字段
type ElectronicsDetails struct {
	WarrantyMonths int `json:"warranty_months"`
}

// ClothingDetails 服装专有字段
type ClothingDetails struct {
	Size     string `json:"size"`
	Material string `json:"material"`
}

// FoodDetails 食品专有字段
type FoodDetails struct {
	ExpiryDate time.Time `json:"expiry_date"`
}

// Product 表示商品领域模型。
// Type 为变体标签，对应的详情字段只有一个非空。
type Product struct {
	ID        int64           `json:"id"`
	Type      ProductType     `json:"type"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Info      string          `json:"info,omitempty"`
	CreatedAt time.Time       `json:"created_at"`

	Electronics *ElectronicsDetails `json:"electronics,omitempty"`
	Clothing    *ClothingDetails    `json:"clothing,omitempty"`
	Food        *FoodDetails        `json:"food,omitempty"`
}

// NewGeneric 创建普通商品
func NewGeneric(name string, price decimal.Decimal, quantity int) (*Product, error) {
	p := newProduct(ProductTypeGeneric, name, price, quantity)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewElectronics 创建电子产品
func NewElectronics(name string, price decimal.Decimal, quantity, warrantyMonths int, info string) (*Product, error) {
	p := newProduct(ProductTypeElectronics, name, price, quantity)
	p.Info = info
	p.Electronics = &ElectronicsDetails{WarrantyMonths: warrantyMonths}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewClothing 创建服装商品
func NewClothing(name string, price decimal.Decimal, quantity int, size, material, info string) (*Product, error) {
	p := newProduct(ProductTypeClothing, name, price, quantity)
	p.Info = info
	p.Clothing = &ClothingDetails{Size: size, Material: material}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewFood 创建食品，保质期不能早于今天
func NewFood(name string, price decimal.Decimal, quantity int, expiry time.Time, info string) (*Product, error) {
	p := newProduct(ProductTypeFood, name, price, quantity)
	p.Info = info
	if err := ValidateExpiry(expiry, p.CreatedAt); err != nil {
		return nil, err
	}
	p.Food = &FoodDetails{ExpiryDate: expiry}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func newProduct(t ProductType, name string, price decimal.Decimal, quantity int) *Product {
	return &Product{
		Type:      t,
		Name:      name,
		Price:     price,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
}

// ValidateName 校验商品名称
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "must not be empty")
	}
	return nil
}

// ValidatePrice 校验价格
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return invalid("price", "must not be negative")
	}
	return nil
}

// ValidateQuantity 校验数量
func ValidateQuantity(quantity int) error {
	if quantity < 0 {
		return invalid("quantity", "must not be negative")
	}
	return nil
}

// ValidateExpiry 校验保质期，按天比较
func ValidateExpiry(expiry, now time.Time) error {
	if dateOf(expiry).Before(dateOf(now)) {
		return invalid("expiry_date", "must not be in the past")
	}
	return nil
}

// Validate 校验通用字段和变体字段。
// 保质期只在设置时校验，已入库的过期食品仍是合法商品。
func (p *Product) Validate() error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if err := ValidatePrice(p.Price); err != nil {
		return err
	}
	if err := ValidateQuantity(p.Quantity); err != nil {
		return err
	}

	switch p.Type {
	case ProductTypeGeneric:
	case ProductTypeElectronics:
		if p.Electronics == nil {
			return invalid("electronics", "details missing")
		}
		if p.Electronics.WarrantyMonths < 0 {
			return invalid("warranty_months", "must not be negative")
		}
	case ProductTypeClothing:
		if p.Clothing == nil {
			return invalid("clothing", "details missing")
		}
		if !slices.Contains(ClothingSizes, p.Clothing.Size) {
			return invalid("size", "choose from "+strings.Join(ClothingSizes, ", "))
		}
		if !slices.Contains(ClothingMaterials, p.Clothing.Material) {
			return invalid("material", "choose from "+strings.Join(ClothingMaterials, ", "))
		}
	case ProductTypeFood:
		if p.Food == nil {
			return invalid("food", "details missing")
		}
	default:
		return invalid("type", "unknown product type "+string(p.Type))
	}
	return nil
}

// Kind 返回商品类型
func (p *Product) Kind() ProductType { return p.Type }

// IsExpired 判断食品是否过期，非食品恒为false
func (p *Product) IsExpired(now time.Time) bool {
	if p.Type != ProductTypeFood || p.Food == nil {
		return false
	}
	return dateOf(p.Food.ExpiryDate).Before(dateOf(now))
}

// StockValue 返回库存价值 price * quantity
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// AddQuantities 返回 a+b，两者均非负且和超过 math.MaxInt 时返回 ValidationError
func AddQuantities(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, invalid("quantity", "must not be negative")
	}
	if a > math.MaxInt-b {
		return 0, invalid("quantity", "exceeds the maximum stock level")
	}
	return a + b, nil
}

// AddStock 入库，结果溢出时不修改库存
func (p *Product) AddStock(quantity int) error {
	if quantity < 0 {
		return invalid("quantity", "cannot add a negative amount")
	}
	total, err := AddQuantities(p.Quantity, quantity)
	if err != nil {
		return err
	}
	p.Quantity = total
	return nil
}

// RemoveStock 出库，库存不足时返回 InsufficientStockError 且不修改库存
func (p *Product) RemoveStock(quantity int) error {
	if quantity < 0 {
		return invalid("quantity", "cannot remove a negative amount")
	}
	if p.Quantity < quantity {
		return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: quantity, Available: p.Quantity}
	}
	p.Quantity -= quantity
	return nil
}

// Clone 返回深拷贝
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.Electronics != nil {
		e := *p.Electronics
		c.Electronics = &e
	}
	if p.Clothing != nil {
		cl := *p.Clothing
		c.Clothing = &cl
	}
	if p.Food != nil {
		f := *p.Food
		c.Food = &f
	}
	return &c
}

// TotalValue 计算一组商品的库存总价值
func TotalValue(products []*Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.StockValue())
	}
	return total
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

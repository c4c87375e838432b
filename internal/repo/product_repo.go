// Package repo 实现数据访问层。
// 目录、订单、供应商与审计日志均保存在进程内存中；除审计日志外，
// 各仓储本身不加锁，由 service 层的单写者锁串行化访问。
package repo

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MorseWayne/stockroom/internal/domain"
)

// ProductRepository 定义商品目录接口。
// 返回的指针指向目录内部对象，调用方对外暴露前需要 Clone。
type ProductRepository interface {
	// 基本操作
	Add(product *domain.Product) (stored *domain.Product, merged bool, err error)
	GetByID(id int64) (*domain.Product, error)
	GetByName(name string) (*domain.Product, error)
	Update(id int64, name string, price decimal.Decimal, quantity int) (*domain.Product, error)
	Delete(id int64) error

	// 库存操作
	Adjust(id int64, delta int) (*domain.Product, error)
	Correct(id int64, quantity int) (*domain.Product, error)

	// 查询操作
	List() []*domain.Product
	ListByType(t domain.ProductType) []*domain.Product
	ListByPriceRange(min, max decimal.Decimal) []*domain.Product
	ListByQuantityRange(min, max int) []*domain.Product
	ListByCreatedRange(from, to time.Time) []*domain.Product
	LowStock(lookup domain.ThresholdLookup) ([]*domain.LowStockAlert, error)
	GroupByType() []domain.TypeGroup
	Expired(now time.Time) []*domain.Product

	// 统计操作
	Count() int
}

// productRepo 基于map和插入顺序切片的内存目录
type productRepo struct {
	products map[int64]*domain.Product
	order    []int64
	nextID   int64
}

// NewProductRepository 创建商品目录实例
func NewProductRepository() ProductRepository {
	return &productRepo{
		products: make(map[int64]*domain.Product),
		nextID:   1,
	}
}

// Add 添加商品。
// 合并规则：先按ID合并；ID不存在时按名称（大小写不敏感）合并，传入对象被丢弃；
// 都不命中时由目录分配新ID（覆盖调用方对象上的旧ID）并保存副本。
// 两条合并路径互斥，不会重复累加；合并后数量超过 math.MaxInt 时拒绝且不做修改。
func (r *productRepo) Add(product *domain.Product) (*domain.Product, bool, error) {
	if product == nil {
		return nil, false, &domain.ValidationError{Field: "product", Reason: "must not be nil"}
	}
	if err := product.Validate(); err != nil {
		return nil, false, err
	}

	existing, ok := r.products[product.ID]
	if !ok {
		existing = r.findByName(product.Name)
	}
	if existing != nil {
		total, err := domain.AddQuantities(existing.Quantity, product.Quantity)
		if err != nil {
			return nil, false, err
		}
		existing.Quantity = total
		return existing, true, nil
	}

	product.ID = r.nextID
	r.nextID++

	stored := product.Clone()
	r.products[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	return stored, false, nil
}

// GetByID 根据ID获取商品
func (r *productRepo) GetByID(id int64) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "product", ID: id}
	}
	return product, nil
}

// GetByName 根据名称精确查找（大小写不敏感）
func (r *productRepo) GetByName(name string) (*domain.Product, error) {
	if product := r.findByName(name); product != nil {
		return product, nil
	}
	return nil, &domain.NotFoundError{Kind: "product", ID: name}
}

// Update 覆盖名称、价格和数量，按顺序校验，任一失败则不做修改
func (r *productRepo) Update(id int64, name string, price decimal.Decimal, quantity int) (*domain.Product, error) {
	product, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidatePrice(price); err != nil {
		return nil, err
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	product.Name = name
	product.Price = price
	product.Quantity = quantity
	return product, nil
}

// Delete 删除商品
func (r *productRepo) Delete(id int64) error {
	if _, ok := r.products[id]; !ok {
		return &domain.NotFoundError{Kind: "product", ID: id}
	}
	delete(r.products, id)
	r.order = slices.DeleteFunc(r.order, func(v int64) bool { return v == id })
	return nil
}

// Adjust 按增量调整库存，结果为负时置为0，超过 math.MaxInt 时置为 math.MaxInt
func (r *productRepo) Adjust(id int64, delta int) (*domain.Product, error) {
	product, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if delta > 0 && product.Quantity > math.MaxInt-delta {
		product.Quantity = math.MaxInt
		return product, nil
	}
	product.Quantity = max(product.Quantity+delta, 0)
	return product, nil
}

// Correct 将库存修正为指定的非负值
func (r *productRepo) Correct(id int64, quantity int) (*domain.Product, error) {
	product, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	product.Quantity = quantity
	return product, nil
}

// List 按插入顺序返回全部商品
func (r *productRepo) List() []*domain.Product {
	return r.filter(func(*domain.Product) bool { return true })
}

// ListByType 按类型过滤
func (r *productRepo) ListByType(t domain.ProductType) []*domain.Product {
	return r.filter(func(p *domain.Product) bool { return p.Type == t })
}

// ListByPriceRange 价格区间过滤（闭区间）
func (r *productRepo) ListByPriceRange(min, max decimal.Decimal) []*domain.Product {
	return r.filter(func(p *domain.Product) bool {
		return p.Price.GreaterThanOrEqual(min) && p.Price.LessThanOrEqual(max)
	})
}

// ListByQuantityRange 数量区间过滤（闭区间）
func (r *productRepo) ListByQuantityRange(min, max int) []*domain.Product {
	return r.filter(func(p *domain.Product) bool { return p.Quantity >= min && p.Quantity <= max })
}

// ListByCreatedRange 创建时间区间过滤（闭区间）
func (r *productRepo) ListByCreatedRange(from, to time.Time) []*domain.Product {
	return r.filter(func(p *domain.Product) bool {
		return !p.CreatedAt.Before(from) && !p.CreatedAt.After(to)
	})
}

// LowStock 返回库存低于所属类型阈值的商品
func (r *productRepo) LowStock(lookup domain.ThresholdLookup) ([]*domain.LowStockAlert, error) {
	var alerts []*domain.LowStockAlert
	for _, p := range r.List() {
		threshold, err := lookup.Threshold(p.Type)
		if err != nil {
			return nil, err
		}
		if p.Quantity < threshold {
			alerts = append(alerts, domain.NewLowStockAlert(p, threshold))
		}
	}
	return alerts, nil
}

// GroupByType 按类型分组，组顺序为首次出现顺序
func (r *productRepo) GroupByType() []domain.TypeGroup {
	var groups []domain.TypeGroup
	index := make(map[domain.ProductType]int)
	for _, p := range r.List() {
		i, ok := index[p.Type]
		if !ok {
			i = len(groups)
			index[p.Type] = i
			groups = append(groups, domain.TypeGroup{Type: p.Type})
		}
		groups[i].Products = append(groups[i].Products, p)
	}
	return groups
}

// Expired 返回已过期的食品
func (r *productRepo) Expired(now time.Time) []*domain.Product {
	return r.filter(func(p *domain.Product) bool { return p.IsExpired(now) })
}

// Count 返回商品数量
func (r *productRepo) Count() int {
	return len(r.products)
}

func (r *productRepo) findByName(name string) *domain.Product {
	name = strings.TrimSpace(name)
	for _, id := range r.order {
		if p := r.products[id]; strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return p
		}
	}
	return nil
}

func (r *productRepo) filter(keep func(*domain.Product) bool) []*domain.Product {
	var out []*domain.Product
	for _, id := range r.order {
		if p := r.products[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

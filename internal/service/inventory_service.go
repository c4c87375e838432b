// Package service 实现库存业务逻辑层，负责协调商品目录、订单、供应商和审计日志。
package service

import (
	"fmt"
	"iter"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MorseWayne/stockroom/internal/domain"
	"github.com/MorseWayne/stockroom/internal/metrics"
	"github.com/MorseWayne/stockroom/internal/repo"
)

// InventoryService 定义库存业务逻辑接口。
// 每个成功的变更操作恰好追加一条审计日志，失败的操作不追加。
// 查询返回副本，调用方修改返回值不影响目录。
type InventoryService interface {
	// 商品管理
	AddProduct(product *domain.Product) (*domain.Product, error)
	UpdateProduct(id int64, name string, price decimal.Decimal, quantity int) (*domain.Product, error)
	RemoveProduct(id int64) error
	AdjustStock(id int64, delta int, reason string) (*domain.Product, error)
	CorrectStock(id int64, quantity int, reason string) (*domain.Product, error)

	// 商品查询
	GetProduct(id int64) (*domain.Product, error)
	FindProductByName(name string) (*domain.Product, error)
	ListProducts() []*domain.Product
	FindByType(t domain.ProductType) []*domain.Product
	FindByPriceRange(min, max decimal.Decimal) []*domain.Product
	FindByQuantityRange(min, max int) []*domain.Product
	FindByCreatedRange(from, to time.Time) []*domain.Product
	LowStock(lookup domain.ThresholdLookup) ([]*domain.LowStockAlert, error)
	GroupByType() []domain.TypeGroup
	ExpiredProducts(now time.Time) []*domain.Product
	InventoryValue() decimal.Decimal
	Stats(lookup domain.ThresholdLookup, now time.Time) (*domain.InventoryStats, error)
	Snapshot(lookup domain.ThresholdLookup, now time.Time) (*domain.CatalogSnapshot, error)

	// 订单
	CreateOrder(t domain.OrderType) (*domain.Order, error)
	AddOrderItem(orderID, productID int64, quantity int) (*domain.Order, error)
	RemoveOrderItem(orderID, productID int64) (*domain.Order, error)
	ExecuteOrder(orderID int64) (*domain.Order, error)
	GetOrder(id int64) (*domain.Order, error)
	ListOrders() []*domain.Order

	// 供应商
	RegisterSupplier(name, contact string) (*domain.Supplier, error)
	AddSupplierProducts(supplierID int64, productIDs ...int64) (*domain.Supplier, error)
	RemoveSupplierProduct(supplierID, productID int64) (*domain.Supplier, error)
	RateSupplier(supplierID int64, rating int) (*domain.Supplier, error)
	PlaceSupplierOrder(supplierID int64, items []ProductQuantity) (*domain.Order, error)
	TrackDelivery(supplierID, orderID int64, deliveredAt *time.Time) (bool, error)
	GetSupplier(id int64) (*domain.Supplier, error)
	FindSupplierByName(name string) (*domain.Supplier, error)
	FindSuppliersByProductType(t domain.ProductType) []*domain.Supplier
	ListSuppliers() []*domain.Supplier

	// 审计
	AuditHistory() iter.Seq[domain.AuditEntry]
	AuditLen() int

	// InstanceID 标识服务实例，进程内和进程间都不重复
	InstanceID() uuid.UUID
}

// inventoryService 实现InventoryService接口。
// mu 是唯一的写锁，所有变更串行执行，查询持读锁。
type inventoryService struct {
	mu sync.RWMutex

	products  repo.ProductRepository
	orders    repo.OrderRepository
	suppliers repo.SupplierRepository
	audit     repo.AuditRepository

	instanceID uuid.UUID
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewInventoryService 创建库存服务实例
func NewInventoryService(
	products repo.ProductRepository,
	orders repo.OrderRepository,
	suppliers repo.SupplierRepository,
	audit repo.AuditRepository,
	logger *zap.Logger,
	m *metrics.Metrics,
) InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &inventoryService{
		products:   products,
		orders:     orders,
		suppliers:  suppliers,
		audit:      audit,
		instanceID: uuid.New(),
		logger:     logger,
		metrics:    m,
	}
}

// NewInMemoryInventoryService 使用全新的内存仓储创建服务
func NewInMemoryInventoryService(logger *zap.Logger, m *metrics.Metrics) InventoryService {
	return NewInventoryService(
		repo.NewProductRepository(),
		repo.NewOrderRepository(),
		repo.NewSupplierRepository(),
		repo.NewAuditRepository(),
		logger,
		m,
	)
}

// AddProduct 添加商品，同ID或同名时合并数量
func (s *inventoryService) AddProduct(product *domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product == nil {
		return nil, s.fail("add_product", fmt.Errorf("failed to add product: %w",
			&domain.ValidationError{Field: "product", Reason: "must not be nil"}))
	}

	stored, merged, err := s.products.Add(product)
	if err != nil {
		return nil, s.fail("add_product", fmt.Errorf("failed to add product: %w", err),
			zap.String("name", product.Name))
	}

	s.record(domain.ProductSubject(stored), domain.AuditActionAdd, product.Quantity, "",
		zap.Int64("product_id", stored.ID), zap.Bool("merged", merged))
	s.metrics.SetProducts(s.products.Count())
	return stored.Clone(), nil
}

// UpdateProduct 更新商品名称、价格和数量
func (s *inventoryService) UpdateProduct(id int64, name string, price decimal.Decimal, quantity int) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.products.Update(id, name, price, quantity)
	if err != nil {
		return nil, s.fail("update_product", fmt.Errorf("failed to update product: %w", err),
			zap.Int64("product_id", id))
	}

	s.record(domain.ProductSubject(product), domain.AuditActionUpdate, quantity, "",
		zap.Int64("product_id", id))
	return product.Clone(), nil
}

// RemoveProduct 从目录删除商品
func (s *inventoryService) RemoveProduct(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.products.GetByID(id)
	if err != nil {
		return s.fail("remove_product", fmt.Errorf("failed to remove product: %w", err),
			zap.Int64("product_id", id))
	}
	subject, quantity := domain.ProductSubject(product), product.Quantity
	if err := s.products.Delete(id); err != nil {
		return s.fail("remove_product", fmt.Errorf("failed to remove product: %w", err),
			zap.Int64("product_id", id))
	}

	s.record(subject, domain.AuditActionRemove, quantity, "", zap.Int64("product_id", id))
	s.metrics.SetProducts(s.products.Count())
	return nil
}

// AdjustStock 按增量调整库存，结果为负时置为0
func (s *inventoryService) AdjustStock(id int64, delta int, reason string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.products.Adjust(id, delta)
	if err != nil {
		return nil, s.fail("adjust_stock", fmt.Errorf("failed to adjust stock: %w", err),
			zap.Int64("product_id", id), zap.Int("delta", delta))
	}

	s.record(domain.ProductSubject(product), domain.AuditActionUpdate, delta, reason,
		zap.Int64("product_id", id), zap.Int("stock", product.Quantity))
	return product.Clone(), nil
}

// CorrectStock 将库存修正为指定值
func (s *inventoryService) CorrectStock(id int64, quantity int, reason string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.products.Correct(id, quantity)
	if err != nil {
		return nil, s.fail("correct_stock", fmt.Errorf("failed to correct stock: %w", err),
			zap.Int64("product_id", id), zap.Int("quantity", quantity))
	}

	s.record(domain.ProductSubject(product), domain.AuditActionUpdate, quantity, reason,
		zap.Int64("product_id", id))
	return product.Clone(), nil
}

// GetProduct 根据ID获取商品
func (s *inventoryService) GetProduct(id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, err := s.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	return product.Clone(), nil
}

// FindProductByName 按名称查找商品（大小写不敏感）
func (s *inventoryService) FindProductByName(name string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, err := s.products.GetByName(name)
	if err != nil {
		return nil, err
	}
	return product.Clone(), nil
}

func (s *inventoryService) ListProducts() []*domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products.List())
}

func (s *inventoryService) FindByType(t domain.ProductType) []*domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products.ListByType(t))
}

func (s *inventoryService) FindByPriceRange(min, max decimal.Decimal) []*domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products.ListByPriceRange(min, max))
}

func (s *inventoryService) FindByQuantityRange(min, max int) []*domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products.ListByQuantityRange(min, max))
}

func (s *inventoryService) FindByCreatedRange(from, to time.Time) []*domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products.ListByCreatedRange(from, to))
}

// LowStock 返回低库存告警列表
func (s *inventoryService) LowStock(lookup domain.ThresholdLookup) ([]*domain.LowStockAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts, err := s.products.LowStock(lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock alerts: %w", err)
	}
	return alerts, nil
}

// GroupByType 按类型分组返回商品
func (s *inventoryService) GroupByType() []domain.TypeGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := s.products.GroupByType()
	for i := range groups {
		groups[i].Products = cloneProducts(groups[i].Products)
	}
	return groups
}

// ExpiredProducts 返回已过期的食品
func (s *inventoryService) ExpiredProducts(now time.Time) []*domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products.Expired(now))
}

// InventoryValue 返回目录总价值
func (s *inventoryService) InventoryValue() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.TotalValue(s.products.List())
}

// Stats 计算库存统计信息
func (s *inventoryService) Stats(lookup domain.ThresholdLookup, now time.Time) (*domain.InventoryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts, err := s.products.LowStock(lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory stats: %w", err)
	}

	products := s.products.List()
	stats := &domain.InventoryStats{
		TotalProducts:    len(products),
		LowStockProducts: len(alerts),
		ExpiredProducts:  len(s.products.Expired(now)),
		TotalStockValue:  domain.TotalValue(products),
	}
	for _, p := range products {
		stats.TotalStock += int64(p.Quantity)
		if p.Quantity == 0 {
			stats.OutOfStockProducts++
		}
	}
	return stats, nil
}

// Snapshot 在一次读锁内取得报表所需的全部查询结果
func (s *inventoryService) Snapshot(lookup domain.ThresholdLookup, now time.Time) (*domain.CatalogSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts, err := s.products.LowStock(lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to take inventory snapshot: %w", err)
	}

	products := s.products.List()
	groups := s.products.GroupByType()
	for i := range groups {
		groups[i].Products = cloneProducts(groups[i].Products)
	}
	return &domain.CatalogSnapshot{
		Products:   cloneProducts(products),
		Groups:     groups,
		LowStock:   alerts,
		Expired:    cloneProducts(s.products.Expired(now)),
		TotalValue: domain.TotalValue(products),
		AuditLen:   s.audit.Len(),
	}, nil
}

// AuditHistory 返回审计日志序列
func (s *inventoryService) AuditHistory() iter.Seq[domain.AuditEntry] {
	return s.audit.History()
}

// AuditLen 返回审计日志条目数
func (s *inventoryService) AuditLen() int {
	return s.audit.Len()
}

// InstanceID 返回服务实例ID
func (s *inventoryService) InstanceID() uuid.UUID {
	return s.instanceID
}

// record 追加审计条目并记录日志和指标，调用方需持有写锁
func (s *inventoryService) record(subject domain.Subject, action domain.AuditAction, quantity int, reason string, fields ...zap.Field) domain.AuditEntry {
	entry := s.audit.Record(subject, action, quantity, reason)
	s.metrics.RecordMutation(action)

	fields = append(fields,
		zap.Uint64("seq", entry.Seq),
		zap.String("action", string(action)),
		zap.Stringer("subject", subject),
		zap.Int("quantity", quantity),
	)
	if reason != "" {
		fields = append(fields, zap.String("reason", reason))
	}
	s.logger.Info("Inventory mutation recorded", fields...)
	return entry
}

// fail 记录被拒绝的操作并原样返回错误
func (s *inventoryService) fail(operation string, err error, fields ...zap.Field) error {
	s.metrics.RecordFailure(operation, err)
	s.logger.Warn("Inventory operation rejected",
		append(fields, zap.String("operation", operation), zap.Error(err))...)
	return err
}

func cloneProducts(products []*domain.Product) []*domain.Product {
	out := make([]*domain.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}

// addUnits 累加审计日志中的件数，溢出时取 math.MaxInt
func addUnits(a, b int) int {
	if total, err := domain.AddQuantities(a, b); err == nil {
		return total
	}
	return math.MaxInt
}

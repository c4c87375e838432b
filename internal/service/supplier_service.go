package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/stockroom/internal/domain"
)

// ProductQuantity 采购单中的一行：商品ID和数量
type ProductQuantity struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// RegisterSupplier 登记供应商
func (s *inventoryService) RegisterSupplier(name, contact string) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	supplier, err := domain.NewSupplier(name, contact)
	if err == nil {
		supplier, err = s.suppliers.Register(supplier)
	}
	if err != nil {
		return nil, s.fail("register_supplier", fmt.Errorf("failed to register supplier: %w", err),
			zap.String("name", name))
	}

	s.record(domain.SupplierSubject(supplier), domain.AuditActionSupplierRegistered, 0, "",
		zap.Int64("supplier_id", supplier.ID))
	return supplier.Clone(), nil
}

// AddSupplierProducts 添加供应商品，商品必须存在于目录中
func (s *inventoryService) AddSupplierProducts(supplierID int64, productIDs ...int64) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := []zap.Field{zap.Int64("supplier_id", supplierID)}

	supplier, err := s.suppliers.GetByID(supplierID)
	if err != nil {
		return nil, s.fail("add_supplier_products", fmt.Errorf("failed to add supplier products: %w", err), fields...)
	}
	for _, id := range productIDs {
		if _, err := s.products.GetByID(id); err != nil {
			return nil, s.fail("add_supplier_products", fmt.Errorf("failed to add supplier products: %w", err), fields...)
		}
	}

	added := supplier.AddProducts(productIDs...)
	s.record(domain.SupplierSubject(supplier), domain.AuditActionUpdate, added, "add supplied products", fields...)
	return supplier.Clone(), nil
}

// RemoveSupplierProduct 移除供应商品
func (s *inventoryService) RemoveSupplierProduct(supplierID, productID int64) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := []zap.Field{zap.Int64("supplier_id", supplierID), zap.Int64("product_id", productID)}

	supplier, err := s.suppliers.GetByID(supplierID)
	if err != nil {
		return nil, s.fail("remove_supplier_product", fmt.Errorf("failed to remove supplier product: %w", err), fields...)
	}
	if !supplier.RemoveProduct(productID) {
		err := &domain.NotFoundError{Kind: "supplied product", ID: productID}
		return nil, s.fail("remove_supplier_product", fmt.Errorf("failed to remove supplier product: %w", err), fields...)
	}

	s.record(domain.SupplierSubject(supplier), domain.AuditActionRemove, 1, "remove supplied product", fields...)
	return supplier.Clone(), nil
}

// RateSupplier 记录一次质量评分（1-5）
func (s *inventoryService) RateSupplier(supplierID int64, rating int) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := []zap.Field{zap.Int64("supplier_id", supplierID), zap.Int("rating", rating)}

	supplier, err := s.suppliers.GetByID(supplierID)
	if err != nil {
		return nil, s.fail("rate_supplier", fmt.Errorf("failed to rate supplier: %w", err), fields...)
	}
	if err := supplier.Rate(rating); err != nil {
		return nil, s.fail("rate_supplier", fmt.Errorf("failed to rate supplier: %w", err), fields...)
	}

	s.record(domain.SupplierSubject(supplier), domain.AuditActionUpdate, rating, "quality rating", fields...)
	return supplier.Clone(), nil
}

// PlaceSupplierOrder 向供应商下采购单。
// 目录中不存在的商品ID被跳过；供应商历史中追加一条待交付记录。
func (s *inventoryService) PlaceSupplierOrder(supplierID int64, items []ProductQuantity) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := []zap.Field{zap.Int64("supplier_id", supplierID)}

	supplier, err := s.suppliers.GetByID(supplierID)
	if err != nil {
		return nil, s.fail("place_supplier_order", fmt.Errorf("failed to place supplier order: %w", err), fields...)
	}
	// 同一商品的多条明细会合并，合并后的数量也需要在建单前校验
	lines := make(map[int64]int, len(items))
	for _, item := range items {
		total, err := domain.AddQuantities(lines[item.ProductID], item.Quantity)
		if err != nil {
			return nil, s.fail("place_supplier_order", fmt.Errorf("failed to place supplier order: %w", err), fields...)
		}
		lines[item.ProductID] = total
	}

	order, err := s.orders.Create(domain.OrderTypePurchase)
	if err != nil {
		return nil, s.fail("place_supplier_order", fmt.Errorf("failed to place supplier order: %w", err), fields...)
	}

	units, skipped := 0, 0
	for _, item := range items {
		product, err := s.products.GetByID(item.ProductID)
		if err != nil {
			skipped++
			continue
		}
		// 采购单不做库存预检，数量已在上面校验
		if err := order.AddItem(product, item.Quantity); err != nil {
			return nil, s.fail("place_supplier_order", fmt.Errorf("failed to place supplier order: %w", err), fields...)
		}
		units = addUnits(units, item.Quantity)
	}
	supplier.RecordOrder(order.ID, order.CreatedAt)

	s.record(domain.OrderSubject(order), domain.AuditActionOrderCreated, units,
		fmt.Sprintf("supplier %s", supplier.Name),
		append(fields, zap.Int64("order_id", order.ID), zap.Int("skipped", skipped))...)
	return order.Snapshot(), nil
}

// TrackDelivery 登记采购单交付，deliveredAt 为空时取当前时间。
// 返回是否找到对应的历史记录。
func (s *inventoryService) TrackDelivery(supplierID, orderID int64, deliveredAt *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := []zap.Field{zap.Int64("supplier_id", supplierID), zap.Int64("order_id", orderID)}

	supplier, err := s.suppliers.GetByID(supplierID)
	if err != nil {
		return false, s.fail("track_delivery", fmt.Errorf("failed to track delivery: %w", err), fields...)
	}

	at := time.Now()
	if deliveredAt != nil {
		at = *deliveredAt
	}
	found, err := supplier.MarkDelivered(orderID, at)
	if err != nil {
		return found, s.fail("track_delivery", fmt.Errorf("failed to track delivery: %w", err), fields...)
	}
	if !found {
		s.logger.Info("No matching supplier order", fields...)
		return false, nil
	}

	s.record(domain.SupplierSubject(supplier), domain.AuditActionDeliveryTracked, 0,
		fmt.Sprintf("order %d", orderID), fields...)
	return true, nil
}

// GetSupplier 根据ID获取供应商
func (s *inventoryService) GetSupplier(id int64) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, err := s.suppliers.GetByID(id)
	if err != nil {
		return nil, err
	}
	return supplier.Clone(), nil
}

// FindSupplierByName 按名称查找供应商（大小写不敏感）
func (s *inventoryService) FindSupplierByName(name string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, err := s.suppliers.GetByName(name)
	if err != nil {
		return nil, err
	}
	return supplier.Clone(), nil
}

// FindSuppliersByProductType 返回供应指定类型商品的供应商
func (s *inventoryService) FindSuppliersByProductType(t domain.ProductType) []*domain.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSuppliers(s.suppliers.ListByProductType(t, s.products))
}

func (s *inventoryService) ListSuppliers() []*domain.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSuppliers(s.suppliers.List())
}

func cloneSuppliers(suppliers []*domain.Supplier) []*domain.Supplier {
	out := make([]*domain.Supplier, len(suppliers))
	for i, sp := range suppliers {
		out[i] = sp.Clone()
	}
	return out
}

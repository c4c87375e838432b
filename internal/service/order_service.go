package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MorseWayne/stockroom/internal/domain"
)

// CreateOrder 创建采购或销售订单
func (s *inventoryService) CreateOrder(t domain.OrderType) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.orders.Create(t)
	if err != nil {
		return nil, s.fail("create_order", fmt.Errorf("failed to create order: %w", err),
			zap.String("type", string(t)))
	}

	s.record(domain.OrderSubject(order), domain.AuditActionOrderCreated, 0, "",
		zap.Int64("order_id", order.ID))
	return order.Snapshot(), nil
}

// AddOrderItem 向订单添加商品明细，同一商品数量累加
func (s *inventoryService) AddOrderItem(orderID, productID int64, quantity int) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := []zap.Field{zap.Int64("order_id", orderID), zap.Int64("product_id", productID)}

	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, s.fail("add_order_item", fmt.Errorf("failed to add order item: %w", err), fields...)
	}
	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, s.fail("add_order_item", fmt.Errorf("failed to add order item: %w", err), fields...)
	}
	if err := order.AddItem(product, quantity); err != nil {
		return nil, s.fail("add_order_item", fmt.Errorf("failed to add order item: %w", err), fields...)
	}

	s.record(domain.OrderSubject(order), domain.AuditActionUpdate, quantity,
		fmt.Sprintf("add %s", product.Name), fields...)
	return order.Snapshot(), nil
}

// RemoveOrderItem 删除订单中的商品明细，明细不存在时不报错
func (s *inventoryService) RemoveOrderItem(orderID, productID int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := []zap.Field{zap.Int64("order_id", orderID), zap.Int64("product_id", productID)}

	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, s.fail("remove_order_item", fmt.Errorf("failed to remove order item: %w", err), fields...)
	}
	removed := order.Quantity(productID)
	if err := order.RemoveItem(productID); err != nil {
		return nil, s.fail("remove_order_item", fmt.Errorf("failed to remove order item: %w", err), fields...)
	}

	s.record(domain.OrderSubject(order), domain.AuditActionRemove, removed,
		fmt.Sprintf("remove product %d", productID), fields...)
	return order.Snapshot(), nil
}

// ExecuteOrder 执行订单。
// 明细中的商品必须仍在目录中；销售订单任一明细库存不足时整单失败，库存不变。
func (s *inventoryService) ExecuteOrder(orderID int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := []zap.Field{zap.Int64("order_id", orderID)}

	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, s.fail("execute_order", fmt.Errorf("failed to execute order: %w", err), fields...)
	}

	for _, li := range order.Items() {
		if current, err := s.products.GetByID(li.Product.ID); err != nil || current != li.Product {
			err = &domain.NotFoundError{Kind: "product", ID: li.Product.ID}
			s.metrics.RecordExecution(order.Type, err)
			return nil, s.fail("execute_order", fmt.Errorf("failed to execute order: %w", err), fields...)
		}
	}

	err = order.Execute()
	s.metrics.RecordExecution(order.Type, err)
	if err != nil {
		return nil, s.fail("execute_order", fmt.Errorf("failed to execute order: %w", err), fields...)
	}

	units := 0
	for _, li := range order.Items() {
		units = addUnits(units, li.Quantity)
	}
	s.record(domain.OrderSubject(order), domain.AuditActionOrderExecuted, units, "",
		append(fields, zap.String("amount", order.Amount().StringFixed(2)))...)
	return order.Snapshot(), nil
}

// GetOrder 根据ID获取订单快照
func (s *inventoryService) GetOrder(id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, err := s.orders.GetByID(id)
	if err != nil {
		return nil, err
	}
	return order.Snapshot(), nil
}

// ListOrders 按创建顺序返回订单快照
func (s *inventoryService) ListOrders() []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := s.orders.List()
	out := make([]*domain.Order, len(orders))
	for i, o := range orders {
		out[i] = o.Snapshot()
	}
	return out
}

package repo

import (
	"github.com/MorseWayne/stockroom/internal/domain"
)

// OrderRepository 定义订单列表接口
type OrderRepository interface {
	Create(t domain.OrderType) (*domain.Order, error)
	GetByID(id int64) (*domain.Order, error)
	List() []*domain.Order
	Count() int
}

// orderRepo 内存订单列表，订单ID由实例自身的计数器分配
type orderRepo struct {
	orders []*domain.Order
	index  map[int64]*domain.Order
	nextID int64
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository() OrderRepository {
	return &orderRepo{
		index:  make(map[int64]*domain.Order),
		nextID: 1,
	}
}

// Create 创建订单，类型非法时不消耗ID
func (r *orderRepo) Create(t domain.OrderType) (*domain.Order, error) {
	order, err := domain.NewOrder(r.nextID, t)
	if err != nil {
		return nil, err
	}
	r.nextID++
	r.orders = append(r.orders, order)
	r.index[order.ID] = order
	return order, nil
}

// GetByID 根据ID获取订单
func (r *orderRepo) GetByID(id int64) (*domain.Order, error) {
	order, ok := r.index[id]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "order", ID: id}
	}
	return order, nil
}

// List 按创建顺序返回订单
func (r *orderRepo) List() []*domain.Order {
	out := make([]*domain.Order, len(r.orders))
	copy(out, r.orders)
	return out
}

// Count 返回订单数量
func (r *orderRepo) Count() int {
	return len(r.orders)
}

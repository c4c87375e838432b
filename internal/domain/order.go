// Package domain 定义订单相关的业务领域模型和核心业务规则。
package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType 定义订单类型
type OrderType string

const (
	OrderTypePurchase OrderType = "Purchase" // 采购入库
	OrderTypeSale     OrderType = "Sale"     // 销售出库
)

// ParseOrderType 解析订单类型
func ParseOrderType(s string) (OrderType, error) {
	switch {
	case strings.EqualFold(s, string(OrderTypePurchase)):
		return OrderTypePurchase, nil
	case strings.EqualFold(s, string(OrderTypeSale)):
		return OrderTypeSale, nil
	}
	return "", ErrInvalidOrderType
}

// Valid 判断订单类型是否合法
func (t OrderType) Valid() bool {
	return t == OrderTypePurchase || t == OrderTypeSale
}

// OrderStatus 定义订单状态
type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"     // 可修改明细
	OrderStatusExecuted OrderStatus = "executed" // 已执行（终态）
)

// LineItem 订单明细
type LineItem struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// Subtotal 返回明细金额
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order 表示一笔采购或销售订单。
// 明细中的 Product 指向目录中的商品，执行时直接修改其库存。
type Order struct {
	ID         int64      `json:"id"`
	Type       OrderType  `json:"type"`
	CreatedAt  time.Time  `json:"created_at"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`

	status OrderStatus
	items  []LineItem
	amount decimal.Decimal
}

// NewOrder 创建处于 open 状态的订单
func NewOrder(id int64, t OrderType) (*Order, error) {
	if !t.Valid() {
		return nil, ErrInvalidOrderType
	}
	return &Order{
		ID:        id,
		Type:      t,
		CreatedAt: time.Now(),
		status:    OrderStatusOpen,
		amount:    decimal.Zero,
	}, nil
}

// Status 返回订单状态
func (o *Order) Status() OrderStatus { return o.status }

// IsExecuted 判断订单是否已执行
func (o *Order) IsExecuted() bool { return o.status == OrderStatusExecuted }

// Amount 返回订单总金额
func (o *Order) Amount() decimal.Decimal { return o.amount }

// Items 返回明细副本
func (o *Order) Items() []LineItem {
	out := make([]LineItem, len(o.items))
	copy(out, o.items)
	return out
}

// Quantity 返回某商品在订单中的数量
func (o *Order) Quantity(productID int64) int {
	for _, li := range o.items {
		if li.Product.ID == productID {
			return li.Quantity
		}
	}
	return 0
}

// AddItem 添加明细。
// 销售订单在添加时预检当前库存，执行时还会再次校验。
func (o *Order) AddItem(p *Product, quantity int) error {
	if o.IsExecuted() {
		return ErrOrderExecuted
	}
	if quantity < 0 {
		return invalid("quantity", "must not be negative")
	}
	if o.Type == OrderTypeSale && quantity > p.Quantity {
		return &InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: quantity, Available: p.Quantity}
	}

	for i := range o.items {
		if o.items[i].Product.ID == p.ID {
			total, err := AddQuantities(o.items[i].Quantity, quantity)
			if err != nil {
				return err
			}
			o.items[i].Quantity = total
			o.recalculate()
			return nil
		}
	}
	o.items = append(o.items, LineItem{Product: p, Quantity: quantity})
	o.recalculate()
	return nil
}

// RemoveItem 删除指定商品的明细，不存在时为空操作
func (o *Order) RemoveItem(productID int64) error {
	if o.IsExecuted() {
		return ErrOrderExecuted
	}
	o.items = slices.DeleteFunc(o.items, func(li LineItem) bool { return li.Product.ID == productID })
	o.recalculate()
	return nil
}

// Execute 执行订单。
// 先校验全部明细再修改库存：销售订单任一明细库存不足、采购订单任一明细入库后溢出，
// 都不修改任何库存。
func (o *Order) Execute() error {
	if o.IsExecuted() {
		return ErrOrderExecuted
	}

	for _, li := range o.items {
		if li.Quantity < 0 {
			return invalid("quantity", "must not be negative")
		}
	}

	switch o.Type {
	case OrderTypePurchase:
		for _, li := range o.items {
			if _, err := AddQuantities(li.Product.Quantity, li.Quantity); err != nil {
				return err
			}
		}
		for _, li := range o.items {
			if err := li.Product.AddStock(li.Quantity); err != nil {
				return err
			}
		}
	case OrderTypeSale:
		for _, li := range o.items {
			if li.Product.Quantity < li.Quantity {
				return &InsufficientStockError{
					ProductID: li.Product.ID,
					Name:      li.Product.Name,
					Requested: li.Quantity,
					Available: li.Product.Quantity,
				}
			}
		}
		for _, li := range o.items {
			if err := li.Product.RemoveStock(li.Quantity); err != nil {
				return err
			}
		}
	default:
		return ErrInvalidOrderType
	}

	now := time.Now()
	o.ExecutedAt = &now
	o.status = OrderStatusExecuted
	return nil
}

// Snapshot 返回订单快照，明细中的商品为拷贝
func (o *Order) Snapshot() *Order {
	c := *o
	c.items = make([]LineItem, len(o.items))
	for i, li := range o.items {
		c.items[i] = LineItem{Product: li.Product.Clone(), Quantity: li.Quantity}
	}
	if o.ExecutedAt != nil {
		t := *o.ExecutedAt
		c.ExecutedAt = &t
	}
	return &c
}

func (o *Order) recalculate() {
	total := decimal.Zero
	for _, li := range o.items {
		total = total.Add(li.Subtotal())
	}
	o.amount = total
}

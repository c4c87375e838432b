// Package domain 定义供应商相关的业务领域模型和核心业务规则。
package domain

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// 供应商名称长度限制
const (
	SupplierNameMaxLen = 25
	MinQualityRating   = 1
	MaxQualityRating   = 5
)

// DeliveryStatus 定义采购单交付状态
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"   // 待交付
	DeliveryStatusDelivered DeliveryStatus = "delivered" // 已交付
)

// OrderRecord 供应商的采购历史记录
type OrderRecord struct {
	OrderID     int64          `json:"order_id"`
	PlacedAt    time.Time      `json:"placed_at"`
	Status      DeliveryStatus `json:"status"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
}

// Supplier 表示供应商
type Supplier struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`

	ProductIDs     []int64       `json:"product_ids"`
	DeliveryDays   []float64     `json:"delivery_days"`
	QualityRatings []int         `json:"quality_ratings"`
	History        []OrderRecord `json:"history"`
}

// NewSupplier 创建供应商，名称去除首尾空白后长度须在1-25之间
func NewSupplier(name, contact string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if err := ValidateSupplierName(name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(contact) == "" {
		return nil, &InvalidSupplierFieldError{Field: "contact"}
	}
	return &Supplier{Name: name, Contact: contact}, nil
}

// ValidateSupplierName 校验供应商名称
func ValidateSupplierName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 1 || n > SupplierNameMaxLen {
		return &InvalidSupplierFieldError{Field: "name"}
	}
	return nil
}

// Supplies 判断是否供应指定商品
func (s *Supplier) Supplies(productID int64) bool {
	return slices.Contains(s.ProductIDs, productID)
}

// AddProducts 添加供应商品，已存在的忽略。返回新增数量
func (s *Supplier) AddProducts(productIDs ...int64) int {
	added := 0
	for _, id := range productIDs {
		if s.Supplies(id) {
			continue
		}
		s.ProductIDs = append(s.ProductIDs, id)
		added++
	}
	return added
}

// RemoveProduct 移除供应商品，返回是否存在
func (s *Supplier) RemoveProduct(productID int64) bool {
	before := len(s.ProductIDs)
	s.ProductIDs = slices.DeleteFunc(s.ProductIDs, func(id int64) bool { return id == productID })
	return len(s.ProductIDs) != before
}

// RecordOrder 追加一条待交付的采购记录
func (s *Supplier) RecordOrder(orderID int64, placedAt time.Time) {
	s.History = append(s.History, OrderRecord{
		OrderID:  orderID,
		PlacedAt: placedAt,
		Status:   DeliveryStatusPending,
	})
}

// MarkDelivered 将采购记录标记为已交付并记录交付天数。
// 找不到记录时返回 false。
func (s *Supplier) MarkDelivered(orderID int64, deliveredAt time.Time) (bool, error) {
	for i := range s.History {
		rec := &s.History[i]
		if rec.OrderID != orderID {
			continue
		}
		if rec.Status == DeliveryStatusDelivered {
			return true, invalid("delivery", "order already delivered")
		}
		if deliveredAt.Before(rec.PlacedAt) {
			return true, invalid("delivery_date", "must not precede the order date")
		}
		t := deliveredAt
		rec.Status = DeliveryStatusDelivered
		rec.DeliveredAt = &t
		s.DeliveryDays = append(s.DeliveryDays, deliveredAt.Sub(rec.PlacedAt).Hours()/24)
		return true, nil
	}
	return false, nil
}

// Rate 记录一次质量评分
func (s *Supplier) Rate(rating int) error {
	if rating < MinQualityRating || rating > MaxQualityRating {
		return invalid("rating", "must be between 1 and 5")
	}
	s.QualityRatings = append(s.QualityRatings, rating)
	return nil
}

// AverageDeliveryDays 平均交付天数，无样本时为0
func (s *Supplier) AverageDeliveryDays() float64 {
	if len(s.DeliveryDays) == 0 {
		return 0
	}
	var sum float64
	for _, d := range s.DeliveryDays {
		sum += d
	}
	return sum / float64(len(s.DeliveryDays))
}

// AverageQuality 平均质量评分，无样本时为0
func (s *Supplier) AverageQuality() float64 {
	if len(s.QualityRatings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range s.QualityRatings {
		sum += r
	}
	return float64(sum) / float64(len(s.QualityRatings))
}

// Clone 返回深拷贝
func (s *Supplier) Clone() *Supplier {
	if s == nil {
		return nil
	}
	c := *s
	c.ProductIDs = slices.Clone(s.ProductIDs)
	c.DeliveryDays = slices.Clone(s.DeliveryDays)
	c.QualityRatings = slices.Clone(s.QualityRatings)
	c.History = make([]OrderRecord, len(s.History))
	for i, rec := range s.History {
		c.History[i] = rec
		if rec.DeliveredAt != nil {
			t := *rec.DeliveredAt
			c.History[i].DeliveredAt = &t
		}
	}
	return &c
}

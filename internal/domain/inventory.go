// Package domain 定义库存阈值、低库存告警和库存统计模型。
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ThresholdLookup 按商品类型查询低库存阈值
type ThresholdLookup interface {
	Threshold(t ProductType) (int, error)
}

// UniformThreshold 所有类型使用同一个阈值
type UniformThreshold int

// Threshold 实现 ThresholdLookup
func (u UniformThreshold) Threshold(ProductType) (int, error) {
	return int(u), nil
}

// Thresholds 按类型配置的阈值，缺失条目视为配置错误
type Thresholds map[ProductType]int

// Threshold 实现 ThresholdLookup
func (t Thresholds) Threshold(pt ProductType) (int, error) {
	v, ok := t[pt]
	if !ok {
		return 0, fmt.Errorf("%w for %s", ErrThresholdMissing, pt)
	}
	return v, nil
}

// TypeGroup 按类型分组的商品，组顺序为首次出现顺序
type TypeGroup struct {
	Type     ProductType `json:"type"`
	Products []*Product  `json:"products"`
}

// LowStockAlert 低库存告警
type LowStockAlert struct {
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductType   ProductType     `json:"product_type"`
	CurrentStock  int             `json:"current_stock"`
	Threshold     int             `json:"threshold"`
	StockShortage int             `json:"stock_shortage"`
	ProductPrice  decimal.Decimal `json:"product_price"`
}

// NewLowStockAlert 根据商品和阈值构造告警
func NewLowStockAlert(p *Product, threshold int) *LowStockAlert {
	return &LowStockAlert{
		ProductID:     p.ID,
		ProductName:   p.Name,
		ProductType:   p.Type,
		CurrentStock:  p.Quantity,
		Threshold:     threshold,
		StockShortage: threshold - p.Quantity,
		ProductPrice:  p.Price,
	}
}

// InventoryStats 库存统计信息
type InventoryStats struct {
	TotalProducts      int             `json:"total_products"`
	LowStockProducts   int             `json:"low_stock_products"`
	OutOfStockProducts int             `json:"out_of_stock_products"`
	ExpiredProducts    int             `json:"expired_products"`
	TotalStockValue    decimal.Decimal `json:"total_stock_value"`
	TotalStock         int64           `json:"total_stock"`
}

// CatalogSnapshot 在同一时刻取得的目录视图，AuditLen 为取快照时的审计日志长度
type CatalogSnapshot struct {
	Products   []*Product
	Groups     []TypeGroup
	LowStock   []*LowStockAlert
	Expired    []*Product
	TotalValue decimal.Decimal
	AuditLen   int
}

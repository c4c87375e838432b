// Package domain 定义库存核心的错误类型。
package domain

import (
	"errors"
	"fmt"
)

// 定义领域错误
var (
	ErrInvalidOrderType = errors.New("order type must be Purchase or Sale")
	ErrOrderExecuted    = errors.New("order already executed")
	ErrThresholdMissing = errors.New("stock threshold not configured")
)

// ValidationError 字段校验失败
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError 按ID或名称查找失败
type NotFoundError struct {
	Kind string // product, order, supplier
	ID   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

// InsufficientStockError 销售数量超过当前库存
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (id %d): requested %d, available %d",
		e.Name, e.ProductID, e.Requested, e.Available)
}

// InvalidSupplierFieldError 供应商字段不合法
type InvalidSupplierFieldError struct {
	Field string
}

func (e *InvalidSupplierFieldError) Error() string {
	return fmt.Sprintf("invalid supplier field: %s", e.Field)
}

// IsNotFound 判断错误链中是否包含 NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MorseWayne/stockroom/internal/domain"
)

// SeedSampleInventory 向服务中写入一组示例商品，用于演示和冒烟测试
func SeedSampleInventory(svc InventoryService) ([]*domain.Product, error) {
	samples := []struct {
		name     string
		price    int64
		quantity int
	}{
		{"samsunG", 5, 2},
		{"Gore", 8, 3},
	}

	out := make([]*domain.Product, 0, len(samples))
	for _, sm := range samples {
		p, err := domain.NewGeneric(sm.name, decimal.NewFromInt(sm.price), sm.quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to build sample %q: %w", sm.name, err)
		}
		stored, err := svc.AddProduct(p)
		if err != nil {
			return nil, fmt.Errorf("failed to seed sample %q: %w", sm.name, err)
		}
		out = append(out, stored)
	}
	return out, nil
}

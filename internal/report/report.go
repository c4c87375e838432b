// Package report 渲染文本库存报表，并通过缓存复用相同状态下的渲染结果。
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MorseWayne/stockroom/internal/cache"
	"github.com/MorseWayne/stockroom/internal/domain"
	"github.com/MorseWayne/stockroom/internal/service"
)

// DefaultLowStockThreshold 未配置阈值文件时使用的统一阈值
const DefaultLowStockThreshold = 5

// Snapshot 报表所需的查询结果
type Snapshot struct {
	GeneratedAt time.Time
	Products    []*domain.Product
	Groups      []domain.TypeGroup
	LowStock    []*domain.LowStockAlert
	Expired     []*domain.Product
	TotalValue  decimal.Decimal
}

// Generator 报表生成器
type Generator struct {
	svc    service.InventoryService
	cache  cache.Cache
	lookup domain.ThresholdLookup
	ttl    time.Duration
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

// Option 生成器选项
type Option func(*Generator)

// WithCache 设置报表缓存和过期时间
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(g *Generator) {
		g.cache = c
		g.ttl = ttl
	}
}

// WithKeyPrefix 设置缓存键前缀，多个实例共享Redis时用于隔离
func WithKeyPrefix(prefix string) Option {
	return func(g *Generator) { g.prefix = prefix }
}

// WithClock 设置时钟
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// NewGenerator 创建报表生成器，lookup 为空时使用统一阈值5
func NewGenerator(svc service.InventoryService, lookup domain.ThresholdLookup, opts ...Option) *Generator {
	if lookup == nil {
		lookup = domain.UniformThreshold(DefaultLowStockThreshold)
	}
	g := &Generator{
		svc:    svc,
		cache:  cache.NewNullCache(),
		lookup: lookup,
		prefix: "report",
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate 返回当前库存的文本报表。
// 缓存键包含服务实例ID、审计日志长度和日期，任何变更或跨天都会得到新的键，
// 不同服务实例即使共享缓存和前缀也不会互相命中。
// 缓存读写失败只记录日志，不影响报表生成。
func (g *Generator) Generate(ctx context.Context) (string, error) {
	now := g.now()
	key := g.cacheKey(g.svc.AuditLen(), now)

	var text string
	err := g.cache.Get(ctx, key, &text)
	switch {
	case err == nil:
		g.logger.Debug("Report served from cache", zap.String("key", key))
		return text, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		g.logger.Warn("Failed to read report cache", zap.String("key", key), zap.Error(err))
	}

	snap, auditLen, err := g.snapshot(now)
	if err != nil {
		return "", err
	}
	text = Render(snap)

	// 以快照时刻的日志长度写入，查询与快照之间发生的变更不会被记到旧键下
	key = g.cacheKey(auditLen, now)
	if err := g.cache.Set(ctx, key, text, g.ttl); err != nil {
		g.logger.Warn("Failed to write report cache", zap.String("key", key), zap.Error(err))
	}
	return text, nil
}

// Snapshot 从服务收集报表所需数据，所有字段来自同一时刻的目录状态
func (g *Generator) Snapshot(now time.Time) (*Snapshot, error) {
	snap, _, err := g.snapshot(now)
	return snap, err
}

func (g *Generator) snapshot(now time.Time) (*Snapshot, int, error) {
	cs, err := g.svc.Snapshot(g.lookup, now)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build report: %w", err)
	}
	return &Snapshot{
		GeneratedAt: now,
		Products:    cs.Products,
		Groups:      cs.Groups,
		LowStock:    cs.LowStock,
		Expired:     cs.Expired,
		TotalValue:  cs.TotalValue,
	}, cs.AuditLen, nil
}

func (g *Generator) cacheKey(auditLen int, now time.Time) string {
	return fmt.Sprintf("%s:%s:%d:%s", g.prefix, g.svc.InstanceID(), auditLen, now.Format(time.DateOnly))
}

// Render 将快照渲染为文本
func Render(s *Snapshot) string {
	var b strings.Builder

	b.WriteString("=== INVENTORY REPORT ===\n")
	fmt.Fprintf(&b, "Generated: %s\n", s.GeneratedAt.Format(time.DateTime))
	fmt.Fprintf(&b, "Total Products: %d\n", len(s.Products))
	fmt.Fprintf(&b, "Total Value Of Inventory: %s\n", s.TotalValue.StringFixed(2))

	for _, group := range s.Groups {
		fmt.Fprintf(&b, "\n--- %s (%d) ---\n", group.Type, len(group.Products))
		for _, p := range group.Products {
			b.WriteString(productLine(p))
		}
	}

	if len(s.LowStock) > 0 {
		b.WriteString("\n=== LOW STOCK ALERT ===\n")
		for _, a := range s.LowStock {
			fmt.Fprintf(&b, "#%d %s: %d in stock, threshold %d\n", a.ProductID, a.ProductName, a.CurrentStock, a.Threshold)
		}
	}

	if len(s.Expired) > 0 {
		b.WriteString("\n=== EXPIRED PRODUCTS ===\n")
		for _, p := range s.Expired {
			fmt.Fprintf(&b, "#%d %s: expired %s\n", p.ID, p.Name, p.Food.ExpiryDate.Format(time.DateOnly))
		}
	}

	return b.String()
}

func productLine(p *domain.Product) string {
	line := fmt.Sprintf("#%d %s | price %s | qty %d", p.ID, p.Name, p.Price.StringFixed(2), p.Quantity)
	switch p.Kind() {
	case domain.ProductTypeElectronics:
		line += fmt.Sprintf(" | warranty %dm", p.Electronics.WarrantyMonths)
	case domain.ProductTypeClothing:
		line += fmt.Sprintf(" | %s %s", p.Clothing.Size, p.Clothing.Material)
	case domain.ProductTypeFood:
		line += " | expires " + p.Food.ExpiryDate.Format(time.DateOnly)
	}
	if p.Info != "" {
		line += " | " + p.Info
	}
	return line + "\n"
}

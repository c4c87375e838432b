package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MorseWayne/stockroom/internal/cache"
	"github.com/MorseWayne/stockroom/internal/config"
	"github.com/MorseWayne/stockroom/internal/domain"
	"github.com/MorseWayne/stockroom/internal/logger"
	"github.com/MorseWayne/stockroom/internal/metrics"
	"github.com/MorseWayne/stockroom/internal/report"
	"github.com/MorseWayne/stockroom/internal/service"
)

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %v", err)
	}

	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %v", err)
	}

	return cfg, lg, nil
}

// initCache 初始化报表缓存，Redis 不可用时回退到内存缓存
func initCache(cfg *config.Config, lg *zap.Logger) cache.Cache {
	if !cfg.Cache.Enabled {
		lg.Sugar().Infow("report cache disabled")
		return cache.NewNullCache()
	}

	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err == nil {
			lg.Sugar().Infow("report cache enabled", "type", "redis", "addr", cfg.RedisAddr(), "ttl", cfg.Cache.TTL)
			return redisCache
		}
		lg.Sugar().Warnw("failed to connect to Redis, falling back to memory cache", "error", err)
	}

	lg.Sugar().Infow("report cache enabled", "type", "memory", "ttl", cfg.Cache.TTL)
	return cache.NewMemoryCache()
}

// initThresholds 读取低库存阈值文件，文件不存在时使用统一阈值
func initThresholds(cfg *config.Config, lg *zap.Logger) (domain.ThresholdLookup, error) {
	th, err := config.LoadThresholds(cfg.Thresholds.File)
	if errors.Is(err, os.ErrNotExist) {
		lg.Sugar().Infow("thresholds file not found, using uniform threshold",
			"path", cfg.Thresholds.File, "threshold", report.DefaultLowStockThreshold)
		return domain.UniformThreshold(report.DefaultLowStockThreshold), nil
	}
	if err != nil {
		return nil, err
	}
	lg.Sugar().Infow("thresholds loaded", "path", cfg.Thresholds.File, "types", len(th))
	return th, nil
}

func main() {
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	thresholds, err := initThresholds(cfg, lg)
	if err != nil {
		lg.Fatal("failed to load thresholds", zap.Error(err))
	}

	reportCache := initCache(cfg, lg)
	defer reportCache.Close()

	svc := service.NewInMemoryInventoryService(lg, metrics.New(prometheus.NewRegistry()))
	gen := report.NewGenerator(svc, thresholds,
		report.WithCache(reportCache, cfg.Cache.TTL),
		report.WithKeyPrefix(cfg.App.Name+":report"),
		report.WithLogger(lg),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := runDemo(ctx, os.Stdout, svc, gen); err != nil {
		lg.Fatal("demo failed", zap.Error(err))
	}
	lg.Info("demo finished", zap.Int("audit_entries", svc.AuditLen()))
}

// runDemo 演示目录、订单、供应商和报表的完整流程
func runDemo(ctx context.Context, out io.Writer, svc service.InventoryService, gen *report.Generator) error {
	fmt.Fprintln(out, "=== INVENTORY MANAGEMENT SYSTEM ===")

	if _, err := service.SeedSampleInventory(svc); err != nil {
		return err
	}

	smartphone, err := domain.NewElectronics("Smartphone", decimal.RequireFromString("699.99"), 10, 12, "")
	if err != nil {
		return err
	}
	jeans, err := domain.NewClothing("Denim Jeans", decimal.RequireFromString("49.99"), 25, "L", "cotton", "")
	if err != nil {
		return err
	}
	bread, err := domain.NewFood("Whole Wheat Bread", decimal.RequireFromString("3.49"), 15, time.Now().AddDate(0, 0, 3), "")
	if err != nil {
		return err
	}
	for _, p := range []*domain.Product{smartphone, jeans, bread} {
		if _, err := svc.AddProduct(p); err != nil {
			return err
		}
	}

	text, err := gen.Generate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n1. Initial Inventory:\n%s", text)

	fmt.Fprintln(out, "\n2. Product Types:")
	for _, p := range svc.ListProducts() {
		fmt.Fprintf(out, "  #%d %s - Type: %s\n", p.ID, p.Name, p.Kind())
	}

	fmt.Fprintln(out, "\n3. Supplier Management:")
	supplier, err := svc.RegisterSupplier("Tech Supplies Inc.", "contact@techsupplies.com")
	if err != nil {
		return err
	}
	if supplier, err = svc.AddSupplierProducts(supplier.ID, smartphone.ID, 1); err != nil {
		return err
	}
	fmt.Fprintf(out, "  Supplier #%d %s supplies %v\n", supplier.ID, supplier.Name, supplier.ProductIDs)

	fmt.Fprintln(out, "\n4. Order Processing:")
	purchase, err := svc.PlaceSupplierOrder(supplier.ID, []service.ProductQuantity{
		{ProductID: smartphone.ID, Quantity: 5},
		{ProductID: jeans.ID, Quantity: 10},
	})
	if err != nil {
		return err
	}
	if _, err := svc.ExecuteOrder(purchase.ID); err != nil {
		return err
	}
	if _, err := svc.TrackDelivery(supplier.ID, purchase.ID, nil); err != nil {
		return err
	}
	if _, err := svc.RateSupplier(supplier.ID, 4); err != nil {
		return err
	}
	phone, _ := svc.GetProduct(smartphone.ID)
	fmt.Fprintf(out, "  Executed purchase order #%d (%s). Smartphone stock: %d\n",
		purchase.ID, purchase.Amount().StringFixed(2), phone.Quantity)

	sale, err := svc.CreateOrder(domain.OrderTypeSale)
	if err != nil {
		return err
	}
	if _, err := svc.AddOrderItem(sale.ID, smartphone.ID, 3); err != nil {
		return err
	}
	if sale, err = svc.AddOrderItem(sale.ID, jeans.ID, 2); err != nil {
		return err
	}
	if _, err := svc.ExecuteOrder(sale.ID); err != nil {
		return err
	}
	phone, _ = svc.GetProduct(smartphone.ID)
	fmt.Fprintf(out, "  Executed sale order #%d (%s). Smartphone stock: %d\n",
		sale.ID, sale.Amount().StringFixed(2), phone.Quantity)

	text, err = gen.Generate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n5. Updated Inventory Report:\n%s", text)

	fmt.Fprintln(out, "\n6. Validation:")
	if _, err := svc.UpdateProduct(smartphone.ID, "Updated Smartphone Name", decimal.NewFromInt(-100), phone.Quantity); err != nil {
		fmt.Fprintf(out, "  Error setting price: %v\n", err)
	}

	fmt.Fprintf(out, "\n7. Total inventory value: $%s\n", svc.InventoryValue().StringFixed(2))

	fmt.Fprintln(out, "\n8. Audit Log:")
	for entry := range svc.AuditHistory() {
		fmt.Fprintf(out, "  %s\n", entry)
	}
	return nil
}

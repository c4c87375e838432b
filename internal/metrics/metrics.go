// Package metrics 提供库存服务的 Prometheus 指标。
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MorseWayne/stockroom/internal/domain"
)

const namespace = "stockroom"

// Metrics 库存服务指标集合
type Metrics struct {
	Mutations  *prometheus.CounterVec
	Executions *prometheus.CounterVec
	Failures   *prometheus.CounterVec
	Products   prometheus.Gauge
}

// New 在给定的注册器上创建指标
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Successful mutating operations, by audit action.",
		}, []string{"action"}),
		Executions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_executions_total",
			Help:      "Order executions, by order type and result.",
		}, []string{"type", "result"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Rejected operations, by operation and error kind.",
		}, []string{"operation", "kind"}),
		Products: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_products",
			Help:      "Number of products currently in the catalog.",
		}),
	}
}

// NewNop 使用独立注册器创建指标，适用于测试和未暴露指标的场景
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// RecordMutation 记录一次成功的变更
func (m *Metrics) RecordMutation(action domain.AuditAction) {
	m.Mutations.WithLabelValues(string(action)).Inc()
}

// RecordExecution 记录一次订单执行结果
func (m *Metrics) RecordExecution(t domain.OrderType, err error) {
	result := "ok"
	if err != nil {
		result = ErrorKind(err)
	}
	m.Executions.WithLabelValues(string(t), result).Inc()
}

// RecordFailure 记录一次被拒绝的操作
func (m *Metrics) RecordFailure(operation string, err error) {
	m.Failures.WithLabelValues(operation, ErrorKind(err)).Inc()
}

// SetProducts 更新目录商品数量
func (m *Metrics) SetProducts(n int) {
	m.Products.Set(float64(n))
}

// ErrorKind 将领域错误归类为低基数的标签值
func ErrorKind(err error) string {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		stock      *domain.InsufficientStockError
		supplier   *domain.InvalidSupplierFieldError
	)
	switch {
	case errors.As(err, &stock):
		return "insufficient_stock"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &supplier):
		return "invalid_supplier_field"
	case errors.Is(err, domain.ErrInvalidOrderType):
		return "invalid_order_type"
	case errors.Is(err, domain.ErrOrderExecuted):
		return "order_executed"
	case errors.Is(err, domain.ErrThresholdMissing):
		return "threshold_missing"
	}
	return "internal"
}

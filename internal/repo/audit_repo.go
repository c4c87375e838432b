package repo

import (
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MorseWayne/stockroom/internal/domain"
)

// AuditRepository 定义只追加的审计日志接口
type AuditRepository interface {
	Record(subject domain.Subject, action domain.AuditAction, quantity int, reason string) domain.AuditEntry
	History() iter.Seq[domain.AuditEntry]
	Len() int
}

// auditRepo 内存审计日志。
// 条目只追加不修改，History 迭代开始时截取当前长度，之后的追加不影响本次迭代。
type auditRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
	now     func() time.Time
}

// NewAuditRepository 创建审计日志实例
func NewAuditRepository() AuditRepository {
	return &auditRepo{now: time.Now}
}

// Record 分配下一个序号并追加条目
func (r *auditRepo) Record(subject domain.Subject, action domain.AuditAction, quantity int, reason string) domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := domain.AuditEntry{
		Seq:       uint64(len(r.entries)) + 1,
		EventID:   uuid.New(),
		Timestamp: r.now(),
		Action:    action,
		Subject:   subject,
		Quantity:  quantity,
		Reason:    reason,
	}
	r.entries = append(r.entries, entry)
	return entry
}

// History 返回按插入顺序的惰性序列，可重复迭代
func (r *auditRepo) History() iter.Seq[domain.AuditEntry] {
	return func(yield func(domain.AuditEntry) bool) {
		r.mu.RLock()
		snapshot := r.entries[:len(r.entries):len(r.entries)]
		r.mu.RUnlock()

		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// Len 返回条目数量
func (r *auditRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

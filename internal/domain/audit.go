// Package domain 定义审计日志领域模型。
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditAction 定义审计动作类型
type AuditAction string

const (
	AuditActionAdd                AuditAction = "Add"
	AuditActionUpdate             AuditAction = "Update"
	AuditActionRemove             AuditAction = "Remove"
	AuditActionSupplierRegistered AuditAction = "SupplierRegistered"
	AuditActionOrderCreated       AuditAction = "OrderCreated"
	AuditActionOrderExecuted      AuditAction = "OrderExecuted"
	AuditActionDeliveryTracked    AuditAction = "DeliveryTracked"
)

// SubjectKind 审计对象类型
type SubjectKind string

const (
	SubjectProduct  SubjectKind = "product"
	SubjectOrder    SubjectKind = "order"
	SubjectSupplier SubjectKind = "supplier"
)

// Subject 被操作的对象
type Subject struct {
	Kind SubjectKind `json:"kind"`
	ID   int64       `json:"id"`
	Name string      `json:"name"`
}

func (s Subject) String() string {
	if s.Name == "" {
		return fmt.Sprintf("%s#%d", s.Kind, s.ID)
	}
	return fmt.Sprintf("%s#%d(%s)", s.Kind, s.ID, s.Name)
}

// AuditEntry 审计日志条目，创建后不可修改
type AuditEntry struct {
	Seq       uint64      `json:"seq"`
	EventID   uuid.UUID   `json:"event_id"`
	Timestamp time.Time   `json:"timestamp"`
	Action    AuditAction `json:"action"`
	Subject   Subject     `json:"subject"`
	Quantity  int         `json:"quantity"`
	Reason    string      `json:"reason,omitempty"`
}

func (e AuditEntry) String() string {
	return fmt.Sprintf("Log %d [Time: %s, Action: %s, Object: %s, Quantity: %d]",
		e.Seq, e.Timestamp.Format(time.RFC3339), e.Action, e.Subject, e.Quantity)
}

// ProductSubject 构造商品对象
func ProductSubject(p *Product) Subject {
	return Subject{Kind: SubjectProduct, ID: p.ID, Name: p.Name}
}

// OrderSubject 构造订单对象
func OrderSubject(o *Order) Subject {
	return Subject{Kind: SubjectOrder, ID: o.ID, Name: string(o.Type)}
}

// SupplierSubject 构造供应商对象
func SupplierSubject(s *Supplier) Subject {
	return Subject{Kind: SubjectSupplier, ID: s.ID, Name: s.Name}
}

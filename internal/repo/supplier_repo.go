package repo

import (
	"strings"

	"github.com/MorseWayne/stockroom/internal/domain"
)

// SupplierRepository 定义供应商注册表接口
type SupplierRepository interface {
	Register(supplier *domain.Supplier) (*domain.Supplier, error)
	GetByID(id int64) (*domain.Supplier, error)
	GetByName(name string) (*domain.Supplier, error)
	ListByProductType(t domain.ProductType, products ProductRepository) []*domain.Supplier
	List() []*domain.Supplier
}

// supplierRepo 按注册顺序保存供应商
type supplierRepo struct {
	suppliers []*domain.Supplier
	nextID    int64
}

// NewSupplierRepository 创建供应商注册表
func NewSupplierRepository() SupplierRepository {
	return &supplierRepo{nextID: 1}
}

// Register 登记供应商并分配ID，保存副本
func (r *supplierRepo) Register(supplier *domain.Supplier) (*domain.Supplier, error) {
	if err := domain.ValidateSupplierName(supplier.Name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(supplier.Contact) == "" {
		return nil, &domain.InvalidSupplierFieldError{Field: "contact"}
	}

	supplier.Name = strings.TrimSpace(supplier.Name)
	supplier.ID = r.nextID
	r.nextID++
	stored := supplier.Clone()
	r.suppliers = append(r.suppliers, stored)
	return stored, nil
}

// GetByID 根据ID获取供应商
func (r *supplierRepo) GetByID(id int64) (*domain.Supplier, error) {
	for _, s := range r.suppliers {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, &domain.NotFoundError{Kind: "supplier", ID: id}
}

// GetByName 名称精确匹配（大小写不敏感），同名时返回最早登记的
func (r *supplierRepo) GetByName(name string) (*domain.Supplier, error) {
	name = strings.TrimSpace(name)
	for _, s := range r.suppliers {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, &domain.NotFoundError{Kind: "supplier", ID: name}
}

// ListByProductType 返回至少供应一件该类型商品的供应商，每个供应商只出现一次。
// 已从目录删除的商品不参与判断。
func (r *supplierRepo) ListByProductType(t domain.ProductType, products ProductRepository) []*domain.Supplier {
	var out []*domain.Supplier
	for _, s := range r.suppliers {
		for _, id := range s.ProductIDs {
			p, err := products.GetByID(id)
			if err == nil && p.Type == t {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// List 按登记顺序返回供应商
func (r *supplierRepo) List() []*domain.Supplier {
	out := make([]*domain.Supplier, len(r.suppliers))
	copy(out, r.suppliers)
	return out
}

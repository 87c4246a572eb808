package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	"github.com/jhoicas/sistema-bodega/internal/domain/repository"
	"github.com/jhoicas/sistema-bodega/pkg/textsearch"
)

var (
	_ repository.ProductRepository     = (*ProductRepo)(nil)
	_ repository.LotRepository         = (*LotRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
	_ repository.DeliveryRepository    = (*DeliveryRepo)(nil)
	_ repository.DepartmentRepository  = (*DepartmentRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ h handle }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.h.with(func(d *state) error {
		if _, ok := d.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, existing := range d.products {
			if existing.Barcode == p.Barcode {
				return domain.ErrDuplicate
			}
		}
		cp := *p
		d.products[p.ID] = &cp
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.with(func(d *state) error {
		if p, ok := d.products[id]; ok {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.with(func(d *state) error {
		for _, p := range d.products {
			if p.Barcode == barcode {
				cp := *p
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

// GetByBarcodeForUpdate equivale a GetByBarcode: Run ya serializa todo el store.
func (r *ProductRepo) GetByBarcodeForUpdate(ctx context.Context, barcode string) (*entity.Product, error) {
	return r.GetByBarcode(ctx, barcode)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.h.with(func(d *state) error {
		cur, ok := d.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Description = p.Description
		cur.Category = p.Category
		cur.TracksExpiry = p.TracksExpiry
		cur.ExpiryDate = p.ExpiryDate
		cur.UpdatedAt = p.UpdatedAt
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, productID string, stock int) error {
	return r.h.with(func(d *state) error {
		cur, ok := d.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		if stock < 0 {
			return domain.NewValidationError("stock", "no puede ser negativo")
		}
		cur.Stock = stock
		cur.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var out []*entity.Product
	err := r.h.with(func(d *state) error {
		for _, p := range d.products {
			if f.Category != "" && p.Category != f.Category {
				continue
			}
			if f.TracksExpiry != nil && p.TracksExpiry != *f.TracksExpiry {
				continue
			}
			if f.InStockOnly && p.Stock <= 0 {
				continue
			}
			if f.Search != "" && !strings.Contains(textsearch.Key(p.Barcode, p.Description), f.Search) {
				continue
			}
			cp := *p
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Description != out[j].Description {
			return out[i].Description < out[j].Description
		}
		return out[i].Barcode < out[j].Barcode
	})
	total := len(out)
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			out = nil
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

// LotRepo lotes en memoria.
type LotRepo struct{ h handle }

func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	return r.h.with(func(d *state) error {
		for _, l := range d.lots {
			if l.ProductID == lot.ProductID && l.Number == lot.Number {
				return domain.ErrDuplicate
			}
		}
		cp := *lot
		d.lots[lot.ID] = &cp
		return nil
	})
}

func (r *LotRepo) GetByNumber(_ context.Context, productID string, number int) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.h.with(func(d *state) error {
		for _, l := range d.lots {
			if l.ProductID == productID && l.Number == number {
				cp := *l
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *LotRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	err := r.h.with(func(d *state) error {
		for _, l := range d.lots {
			if l.ProductID == productID {
				cp := *l
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, err
}

func (r *LotRepo) UpdateStock(_ context.Context, lotID string, stock int) error {
	return r.h.with(func(d *state) error {
		l, ok := d.lots[lotID]
		if !ok {
			return domain.ErrNotFound
		}
		if stock < 0 {
			return domain.NewValidationError("stock", "no puede ser negativo")
		}
		l.Stock = stock
		l.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *LotRepo) UpdateExpiry(_ context.Context, lotID string, expiry time.Time) error {
	return r.h.with(func(d *state) error {
		l, ok := d.lots[lotID]
		if !ok {
			return domain.ErrNotFound
		}
		l.ExpiryDate = expiry
		l.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// TransactionRepo libro de movimientos en memoria. Solo agrega.
type TransactionRepo struct{ h handle }

func (r *TransactionRepo) Create(_ context.Context, tx *entity.Transaction) error {
	return r.h.with(func(d *state) error {
		if tx.Quantity <= 0 {
			return domain.NewValidationError("cantidad", "debe ser mayor a cero")
		}
		cp := *tx
		d.transactions = append(d.transactions, &cp)
		return nil
	})
}

func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.h.with(func(d *state) error {
		for _, t := range d.transactions {
			if t.ID == id {
				cp := *t
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *TransactionRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	err := r.h.with(func(d *state) error {
		for _, t := range d.transactions {
			if t.ProductID == productID {
				cp := *t
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (r *TransactionRepo) FindReversal(_ context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.h.with(func(d *state) error {
		for _, t := range d.transactions {
			if t.Reverses != nil && *t.Reverses == id {
				cp := *t
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

// DeliveryRepo actas en memoria.
type DeliveryRepo struct{ h handle }

func (r *DeliveryRepo) NextNumber(_ context.Context) (int, error) {
	next := 1
	err := r.h.with(func(d *state) error {
		for _, del := range d.deliveries {
			if del.Number >= next {
				next = del.Number + 1
			}
		}
		return nil
	})
	return next, err
}

func (r *DeliveryRepo) Create(_ context.Context, del *entity.Delivery) error {
	return r.h.with(func(d *state) error {
		cp := *del
		d.deliveries = append(d.deliveries, &cp)
		return nil
	})
}

func (r *DeliveryRepo) ListByNumber(_ context.Context, number int) ([]*entity.Delivery, error) {
	return r.filter(func(del *entity.Delivery) bool { return del.Number == number })
}

func (r *DeliveryRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Delivery, error) {
	return r.filter(func(del *entity.Delivery) bool { return del.ProductID == productID })
}

func (r *DeliveryRepo) ListHeaders(_ context.Context, f repository.DeliveryFilter) ([]repository.DeliveryHeader, int, error) {
	byNumber := make(map[int]*repository.DeliveryHeader)
	err := r.h.with(func(d *state) error {
		for _, del := range d.deliveries {
			if f.NumberPrefix != "" && !strings.HasPrefix(strconv.Itoa(del.Number), f.NumberPrefix) {
				continue
			}
			if f.Department != "" && !strings.EqualFold(del.Department, f.Department) {
				continue
			}
			if f.Responsible != "" && !strings.Contains(strings.ToLower(del.Responsible), strings.ToLower(f.Responsible)) {
				continue
			}
			h, ok := byNumber[del.Number]
			if !ok {
				h = &repository.DeliveryHeader{
					Number:            del.Number,
					Department:        del.Department,
					Official:          del.Official,
					SubdepartmentHead: del.SubdepartmentHead,
					Responsible:       del.Responsible,
					CreatedAt:         del.CreatedAt,
				}
				byNumber[del.Number] = h
			}
			h.Items++
			h.Units += del.Quantity
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]repository.DeliveryHeader, 0, len(byNumber))
	for _, h := range byNumber {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	total := len(out)
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			out = out[:0]
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *DeliveryRepo) filter(keep func(*entity.Delivery) bool) ([]*entity.Delivery, error) {
	var out []*entity.Delivery
	err := r.h.with(func(d *state) error {
		for _, del := range d.deliveries {
			if keep(del) {
				cp := *del
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

// DepartmentRepo directorio de departamentos en memoria.
type DepartmentRepo struct{ h handle }

func (r *DepartmentRepo) Create(_ context.Context, dep *entity.Department) error {
	return r.h.with(func(d *state) error {
		for _, existing := range d.departments {
			if strings.EqualFold(existing.Name, dep.Name) {
				return domain.ErrDuplicate
			}
		}
		cp := *dep
		d.departments[dep.ID] = &cp
		return nil
	})
}

func (r *DepartmentRepo) GetByName(_ context.Context, name string) (*entity.Department, error) {
	var out *entity.Department
	err := r.h.with(func(d *state) error {
		for _, dep := range d.departments {
			if strings.EqualFold(dep.Name, name) {
				cp := *dep
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *DepartmentRepo) List(_ context.Context, activeOnly bool) ([]*entity.Department, error) {
	var out []*entity.Department
	err := r.h.with(func(d *state) error {
		for _, dep := range d.departments {
			if activeOnly && !dep.Active {
				continue
			}
			cp := *dep
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *DepartmentRepo) Update(_ context.Context, dep *entity.Department) error {
	return r.h.with(func(d *state) error {
		cur, ok := d.departments[dep.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, other := range d.departments {
			if other.ID != dep.ID && strings.EqualFold(other.Name, dep.Name) {
				return domain.ErrDuplicate
			}
		}
		cur.Name = dep.Name
		cur.Active = dep.Active
		cur.UpdatedAt = dep.UpdatedAt
		return nil
	})
}

func (r *DepartmentRepo) AddOfficial(_ context.Context, o *entity.Official) error {
	return r.h.with(func(d *state) error {
		if _, ok := d.departments[o.DepartmentID]; !ok {
			return domain.ErrNotFound
		}
		cp := *o
		d.officials = append(d.officials, &cp)
		return nil
	})
}

func (r *DepartmentRepo) UpdateOfficial(_ context.Context, o *entity.Official) error {
	return r.h.with(func(d *state) error {
		for _, cur := range d.officials {
			if cur.ID == o.ID {
				cur.Name = o.Name
				cur.Kind = o.Kind
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *DepartmentRepo) ListOfficials(_ context.Context, departmentID string) ([]*entity.Official, error) {
	var out []*entity.Official
	err := r.h.with(func(d *state) error {
		for _, o := range d.officials {
			if o.DepartmentID == departmentID {
				cp := *o
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

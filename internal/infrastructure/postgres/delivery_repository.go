package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	"github.com/jhoicas/sistema-bodega/internal/domain/repository"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

// deliveryNumberLock clave del advisory lock que serializa la numeración de actas.
const deliveryNumberLock = 7301

const deliveryColumns = `id, delivery_number, product_id, quantity, department, official, subdepartment_head, responsible, note, created_by, created_at`

// DeliveryRepo actas de entrega sobre PostgreSQL.
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador. Acepta pool o tx (Querier).
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

// NextNumber toma un advisory lock de transacción y devuelve max + 1. El lock se libera al
// terminar la tx, así dos actas concurrentes no reciben el mismo número.
func (r *DeliveryRepo) NextNumber(ctx context.Context) (int, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, deliveryNumberLock); err != nil {
		return 0, fmt.Errorf("lock delivery number: %w", err)
	}
	var next int
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(delivery_number), 0) + 1 FROM deliveries`).Scan(&next); err != nil {
		return 0, fmt.Errorf("next delivery number: %w", err)
	}
	return next, nil
}

// Create inserta una línea del acta.
func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	query := `
		INSERT INTO deliveries (id, delivery_number, product_id, quantity, department, official, subdepartment_head, responsible, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.Number, d.ProductID, d.Quantity, d.Department,
		d.Official, d.SubdepartmentHead, d.Responsible, d.Note, d.CreatedBy, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// ListByNumber devuelve las líneas de un acta.
func (r *DeliveryRepo) ListByNumber(ctx context.Context, number int) ([]*entity.Delivery, error) {
	return r.list(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE delivery_number = $1 ORDER BY created_at, id`, number)
}

// ListByProduct devuelve las entregas de un producto.
func (r *DeliveryRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Delivery, error) {
	return r.list(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE product_id = $1 ORDER BY created_at`, productID)
}

// ListHeaders agrupa las líneas por número de acta. Las columnas de cabecera son iguales en todas
// las líneas de un acta, así que MIN solo elige una.
func (r *DeliveryRepo) ListHeaders(ctx context.Context, f repository.DeliveryFilter) ([]repository.DeliveryHeader, int, error) {
	clause, args := deliveryFilterClause(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(DISTINCT delivery_number) FROM deliveries`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deliveries: %w", err)
	}

	query := `
		SELECT delivery_number, MIN(department), MIN(official), MIN(subdepartment_head), MIN(responsible),
		       COUNT(*), SUM(quantity), MIN(created_at)
		FROM deliveries` + clause + `
		GROUP BY delivery_number
		ORDER BY delivery_number DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list delivery headers: %w", err)
	}
	defer rows.Close()

	var list []repository.DeliveryHeader
	for rows.Next() {
		var h repository.DeliveryHeader
		if err := rows.Scan(
			&h.Number, &h.Department, &h.Official, &h.SubdepartmentHead, &h.Responsible,
			&h.Items, &h.Units, &h.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan delivery header: %w", err)
		}
		list = append(list, h)
	}
	return list, total, rows.Err()
}

func deliveryFilterClause(f repository.DeliveryFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.NumberPrefix != "" {
		add("starts_with(delivery_number::text, $%d)", f.NumberPrefix)
	}
	if f.Department != "" {
		add("lower(department) = lower($%d)", f.Department)
	}
	if f.Responsible != "" {
		add("strpos(lower(responsible), lower($%d)) > 0", f.Responsible)
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *DeliveryRepo) list(ctx context.Context, query string, arg any) ([]*entity.Delivery, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var list []*entity.Delivery
	for rows.Next() {
		var d entity.Delivery
		if err := rows.Scan(
			&d.ID, &d.Number, &d.ProductID, &d.Quantity, &d.Department,
			&d.Official, &d.SubdepartmentHead, &d.Responsible, &d.Note, &d.CreatedBy, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

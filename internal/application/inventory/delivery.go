package inventory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	domaininv "github.com/jhoicas/sistema-bodega/internal/domain/inventory"
	"github.com/jhoicas/sistema-bodega/internal/domain/repository"
)

// DeliveryItem una línea del acta.
type DeliveryItem struct {
	Barcode  string
	Quantity int
}

// DeliveryInput salida con acta de entrega: varios productos, un mismo número de acta.
// Department, Official y Responsible deben existir en el directorio; SubdepartmentHead, si viene
// vacío, toma la jefatura del departamento.
type DeliveryInput struct {
	Department        string
	Official          string
	SubdepartmentHead string
	Responsible       string
	Note              string
	Items             []DeliveryItem
	UserID            string
}

// DeliveryLine resultado por producto.
type DeliveryLine struct {
	DeliveryID    string
	ProductID     string
	Barcode       string
	Description   string
	Quantity      int
	Stock         int
	TransactionID string
	Draws         []domaininv.Draw
}

// DeliveryResult acta registrada.
type DeliveryResult struct {
	Number            int
	Department        string
	Official          string
	SubdepartmentHead string
	Responsible       string
	Note              string
	CreatedAt         time.Time
	Lines             []DeliveryLine
}

// DeliveryListInput filtros y página del listado de actas.
type DeliveryListInput struct {
	Number      string
	Department  string
	Responsible string
	Limit       int
	Offset      int
}

// DeliveryUseCase registra y consulta actas de entrega. Las salidas pasan por el motor de stock.
type DeliveryUseCase struct {
	engine *StockEngine
}

// NewDeliveryUseCase construye el caso de uso.
func NewDeliveryUseCase(engine *StockEngine) *DeliveryUseCase {
	return &DeliveryUseCase{engine: engine}
}

// Register descuenta cada producto por FIFO y crea las líneas del acta en una sola transacción.
// Si cualquier producto no alcanza, se rechaza el acta completa.
func (uc *DeliveryUseCase) Register(ctx context.Context, in DeliveryInput) (*DeliveryResult, error) {
	if err := validateDelivery(in); err != nil {
		return nil, err
	}
	e := uc.engine
	now := e.now().UTC()
	out := &DeliveryResult{
		SubdepartmentHead: strings.TrimSpace(in.SubdepartmentHead),
		Note:              in.Note,
		CreatedAt:         now,
	}
	var results []*StockResult
	err := e.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		if err := resolveDirectory(ctx, r, in, out); err != nil {
			return err
		}
		number, err := r.Deliveries.NextNumber(ctx)
		if err != nil {
			return err
		}
		out.Number = number
		out.Lines = make([]DeliveryLine, 0, len(in.Items))
		results = make([]*StockResult, 0, len(in.Items))

		// bloqueo en orden de código para que dos actas concurrentes no se crucen
		barcodes := make([]string, 0, len(in.Items))
		for _, item := range in.Items {
			barcodes = append(barcodes, item.Barcode)
		}
		sort.Strings(barcodes)
		locked := make(map[string]*entity.Product, len(barcodes))
		for _, b := range barcodes {
			p, err := lockProduct(ctx, r, b)
			if err != nil {
				return err
			}
			locked[b] = p
		}

		for _, item := range in.Items {
			product := locked[item.Barcode]
			d := &entity.Delivery{
				ID:                uuid.New().String(),
				Number:            number,
				ProductID:         product.ID,
				Quantity:          item.Quantity,
				Department:        out.Department,
				Official:          out.Official,
				SubdepartmentHead: out.SubdepartmentHead,
				Responsible:       out.Responsible,
				Note:              in.Note,
				CreatedBy:         in.UserID,
				CreatedAt:         now,
			}
			if err := r.Deliveries.Create(ctx, d); err != nil {
				return err
			}
			res, err := e.applyExit(ctx, r, product, exitSpec{
				quantity:   item.Quantity,
				note:       fmt.Sprintf("Acta #%d - %s", number, out.Department),
				userID:     in.UserID,
				deliveryID: &d.ID,
			})
			if err != nil {
				return err
			}
			results = append(results, res)
			out.Lines = append(out.Lines, DeliveryLine{
				DeliveryID:    d.ID,
				ProductID:     product.ID,
				Barcode:       product.Barcode,
				Description:   product.Description,
				Quantity:      item.Quantity,
				Stock:         res.Stock,
				TransactionID: res.TransactionID,
				Draws:         res.Draws,
			})
		}
		return nil
	})
	if err != nil {
		e.rejected(err)
		return nil, err
	}
	for i, res := range results {
		e.committed(ctx, res, entity.DirectionSalida, out.Lines[i].Quantity)
	}
	e.log.Info().
		Int("number", out.Number).
		Str("department", out.Department).
		Int("items", len(out.Lines)).
		Msg("acta de entrega registrada")
	return out, nil
}

// Get devuelve un acta por número.
func (uc *DeliveryUseCase) Get(ctx context.Context, number int) (*DeliveryResult, error) {
	repos := uc.engine.repos
	rows, err := repos.Deliveries.ListByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	first := rows[0]
	out := &DeliveryResult{
		Number:            first.Number,
		Department:        first.Department,
		Official:          first.Official,
		SubdepartmentHead: first.SubdepartmentHead,
		Responsible:       first.Responsible,
		Note:              first.Note,
		CreatedAt:         first.CreatedAt,
		Lines:             make([]DeliveryLine, 0, len(rows)),
	}
	for _, d := range rows {
		line := DeliveryLine{DeliveryID: d.ID, ProductID: d.ProductID, Quantity: d.Quantity}
		p, err := repos.Products.GetByID(ctx, d.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			line.Barcode = p.Barcode
			line.Description = p.Description
			line.Stock = p.Stock
		}
		out.Lines = append(out.Lines, line)
	}
	return out, nil
}

// List devuelve las cabeceras de actas, de la más reciente a la más antigua, y el total.
func (uc *DeliveryUseCase) List(ctx context.Context, in DeliveryListInput) ([]repository.DeliveryHeader, int, error) {
	number := strings.TrimSpace(in.Number)
	if number != "" {
		if _, err := strconv.Atoi(number); err != nil || strings.HasPrefix(number, "-") {
			return nil, 0, domain.NewValidationError("numero_acta", "debe ser numérico")
		}
	}
	return uc.engine.repos.Deliveries.ListHeaders(ctx, repository.DeliveryFilter{
		NumberPrefix: number,
		Department:   strings.TrimSpace(in.Department),
		Responsible:  strings.TrimSpace(in.Responsible),
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
}

// resolveDirectory valida departamento, funcionario y responsable contra el directorio y deja en out
// los nombres tal como están registrados.
func resolveDirectory(ctx context.Context, r Repos, in DeliveryInput, out *DeliveryResult) error {
	d, err := r.Departments.GetByName(ctx, strings.TrimSpace(in.Department))
	if err != nil {
		return err
	}
	if d == nil || !d.Active {
		return domain.NewValidationError("departamento", "departamento desconocido o deshabilitado")
	}
	officials, err := r.Departments.ListOfficials(ctx, d.ID)
	if err != nil {
		return err
	}
	official := findOfficial(officials, in.Official)
	if official == nil {
		return domain.NewValidationError("funcionario", fmt.Sprintf("no pertenece a %s", d.Name))
	}
	out.Department = d.Name
	out.Official = official.Name
	if strings.TrimSpace(in.Responsible) != "" {
		resp := findOfficial(officials, in.Responsible)
		if resp == nil {
			return domain.NewValidationError("responsable", fmt.Sprintf("no pertenece a %s", d.Name))
		}
		out.Responsible = resp.Name
	}
	if out.SubdepartmentHead == "" {
		if head := findKind(officials, entity.KindJefatura); head != nil {
			out.SubdepartmentHead = head.Name
		}
	}
	return nil
}

func validateDelivery(in DeliveryInput) error {
	if strings.TrimSpace(in.Department) == "" {
		return domain.NewValidationError("departamento", "requerido")
	}
	if strings.TrimSpace(in.Official) == "" {
		return domain.NewValidationError("funcionario", "requerido")
	}
	if len(in.Items) == 0 {
		return domain.NewValidationError("items", "el acta debe tener al menos un producto")
	}
	seen := make(map[string]struct{}, len(in.Items))
	for i, item := range in.Items {
		if item.Barcode == "" {
			return domain.NewValidationError(fmt.Sprintf("items[%d].codigo_barra", i), "requerido")
		}
		if item.Quantity <= 0 {
			return domain.NewValidationError(fmt.Sprintf("items[%d].cantidad", i), "debe ser mayor a cero")
		}
		if _, dup := seen[item.Barcode]; dup {
			return domain.NewValidationError(fmt.Sprintf("items[%d].codigo_barra", i), "producto repetido en el acta")
		}
		seen[item.Barcode] = struct{}{}
	}
	return nil
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sistema-bodega/internal/application/dto"
	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	domaininv "github.com/jhoicas/sistema-bodega/internal/domain/inventory"
	"github.com/jhoicas/sistema-bodega/internal/domain/repository"
	"github.com/jhoicas/sistema-bodega/pkg/textsearch"
)

// ProductUseCase casos de uso del catálogo. El stock nunca se escribe aquí: el stock inicial
// entra por el motor como cualquier otra entrada.
type ProductUseCase struct {
	txRunner inventory.TxRunner
	repos    inventory.Repos
	engine   *inventory.StockEngine
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner inventory.TxRunner, repos inventory.Repos, engine *inventory.StockEngine) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repos: repos, engine: engine}
}

// Create crea un producto con stock 0 y, si viene stock inicial, registra la entrada.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	barcode := strings.TrimSpace(in.Barcode)
	if barcode == "" {
		return nil, domain.NewValidationError("codigo_barra", "requerido")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, domain.NewValidationError("descripcion", "requerida")
	}
	if !entity.ValidCategory(in.Category) {
		return nil, domain.NewValidationError("categoria", "categoría desconocida")
	}
	var entry *inventory.EntryInput
	if in.InitialStock > 0 {
		entry = &inventory.EntryInput{
			Barcode:   barcode,
			Quantity:  in.InitialStock,
			LotNumber: in.InitialLotNumber,
			Note:      "Stock inicial",
			UserID:    userID,
		}
		if in.InitialExpiry != "" {
			exp, err := time.Parse(dto.DateLayout, in.InitialExpiry)
			if err != nil {
				return nil, domain.NewValidationError("fecha_vencimiento", "formato YYYY-MM-DD")
			}
			entry.ExpiryDate = &exp
		}
		// se valida antes de crear el producto para no dejarlo a medias
		if in.TracksExpiry && entry.ExpiryDate == nil {
			return nil, domain.NewValidationError("fecha_vencimiento", "requerida para productos con vencimiento")
		}
		if !in.TracksExpiry && (entry.ExpiryDate != nil || entry.LotNumber != nil) {
			return nil, domain.NewValidationError("fecha_vencimiento", "el producto no controla vencimiento")
		}
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Barcode:      barcode,
		Description:  strings.TrimSpace(in.Description),
		Category:     in.Category,
		TracksExpiry: in.TracksExpiry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// el producto y su stock inicial se confirman juntos o no queda ninguno
	var res *inventory.StockResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		var err error
		res, err = uc.engine.RecordEntryTx(ctx, r, product, *entry)
		return err
	})
	if entry != nil && !errors.Is(err, domain.ErrDuplicate) {
		uc.engine.EntryCommitted(ctx, res, entry.Quantity, err)
	}
	if err != nil {
		return nil, err
	}
	if res != nil {
		product.Stock = res.Stock
	}
	return ToProductResponse(product), nil
}

// GetByBarcode obtiene un producto por código de barra.
func (uc *ProductUseCase) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	product, err := uc.repos.Products.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// Update modifica descripción, categoría o control de vencimiento.
// Desactivar el control con lotes activos, o activarlo con stock sin lotes, dejaría el stock sin
// respaldo en lotes: ambos casos se rechazan.
func (uc *ProductUseCase) Update(ctx context.Context, barcode string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var out *entity.Product
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		product, err := r.Products.GetByBarcodeForUpdate(ctx, barcode)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if in.Description != nil {
			d := strings.TrimSpace(*in.Description)
			if d == "" {
				return domain.NewValidationError("descripcion", "requerida")
			}
			product.Description = d
		}
		if in.Category != nil {
			if !entity.ValidCategory(*in.Category) {
				return domain.NewValidationError("categoria", "categoría desconocida")
			}
			product.Category = *in.Category
		}
		if in.TracksExpiry != nil && *in.TracksExpiry != product.TracksExpiry {
			lots, err := r.Lots.ListByProduct(ctx, product.ID)
			if err != nil {
				return err
			}
			if !*in.TracksExpiry && domaininv.ActiveStock(lots) > 0 {
				return domain.NewValidationError("controla_vencimiento", "el producto tiene lotes activos")
			}
			if *in.TracksExpiry && product.Stock > 0 {
				return domain.NewValidationError("controla_vencimiento", "el producto tiene stock sin lote; registre su salida primero")
			}
			product.TracksExpiry = *in.TracksExpiry
		}
		product.UpdatedAt = time.Now().UTC()
		out = product
		return r.Products.Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponse(out), nil
}

// List lista productos con búsqueda sin tildes y paginación.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	if in.Category != "" && !entity.ValidCategory(in.Category) {
		return nil, domain.NewValidationError("categoria", "categoría desconocida")
	}
	list, total, err := uc.repos.Products.List(ctx, repository.ProductFilter{
		Search:      textsearch.Fold(in.Search),
		Category:    in.Category,
		InStockOnly: in.InStockOnly,
		Limit:       in.Limit,
		Offset:      in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// ToProductResponse mapea la entidad a la salida HTTP.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		Barcode:      p.Barcode,
		Description:  p.Description,
		Category:     p.Category,
		TracksExpiry: p.TracksExpiry,
		Stock:        p.Stock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

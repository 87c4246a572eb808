package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	domaininv "github.com/jhoicas/sistema-bodega/internal/domain/inventory"
	"github.com/jhoicas/sistema-bodega/internal/domain/repository"
	"github.com/jhoicas/sistema-bodega/pkg/textsearch"
)

// Filtros del control de vencimientos.
const (
	FilterAll      = "todos"
	FilterExpired  = "vencidos"
	FilterCritical = "criticos" // incluye "Vence Hoy"
	FilterWarning  = "precaucion"
)

// LotExpiry detalle de un lote activo.
type LotExpiry struct {
	Number     int
	ExpiryDate time.Time
	Stock      int
	DaysLeft   int
	Status     string
}

// ExpiryItem producto en el control de vencimientos. El estado es el del lote que vence primero.
type ExpiryItem struct {
	Product    *entity.Product
	NextExpiry time.Time
	DaysLeft   int
	Status     string
	Lots       []LotExpiry
}

// ExpiryStats conteo por estado sobre todos los productos con vencimiento y stock, sin filtrar.
type ExpiryStats struct {
	Expired  int
	Critical int // Vence Hoy + Crítico
	Warning  int
	Normal   int
}

// ExpiryReport resultado de Control.
type ExpiryReport struct {
	Today  time.Time
	Filter string
	Search string
	Items  []ExpiryItem
	Stats  ExpiryStats
}

// ExpiryUseCase control de vencimientos.
type ExpiryUseCase struct {
	repos Repos
	th    domaininv.Thresholds
	now   func() time.Time
}

// NewExpiryUseCase construye el caso de uso. now puede ser nil (time.Now).
func NewExpiryUseCase(repos Repos, th domaininv.Thresholds, now func() time.Time) *ExpiryUseCase {
	if now == nil {
		now = time.Now
	}
	return &ExpiryUseCase{repos: repos, th: th, now: now}
}

// Control lista productos con vencimiento y stock, más urgentes primero.
// filter: todos | vencidos | criticos | precaucion. search busca en código y descripción.
func (uc *ExpiryUseCase) Control(ctx context.Context, filter, search string) (*ExpiryReport, error) {
	if filter == "" {
		filter = FilterAll
	}
	switch filter {
	case FilterAll, FilterExpired, FilterCritical, FilterWarning:
	default:
		return nil, domain.NewValidationError("estado", "debe ser todos, vencidos, criticos o precaucion")
	}
	tracked := true
	products, _, err := uc.repos.Products.List(ctx, repository.ProductFilter{TracksExpiry: &tracked, InStockOnly: true})
	if err != nil {
		return nil, err
	}

	today := uc.now()
	report := &ExpiryReport{Today: dateOnly(today), Filter: filter, Search: search, Items: []ExpiryItem{}}
	for _, p := range products {
		lots, err := uc.repos.Lots.ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		item, ok := uc.item(p, lots, today)
		if !ok {
			continue
		}
		switch item.Status {
		case domaininv.ExpiryExpired:
			report.Stats.Expired++
		case domaininv.ExpiryToday, domaininv.ExpiryCritical:
			report.Stats.Critical++
		case domaininv.ExpiryWarning:
			report.Stats.Warning++
		default:
			report.Stats.Normal++
		}
		if !matchesFilter(filter, item.Status) {
			continue
		}
		if search != "" && !textsearch.Match(textsearch.Key(p.Barcode, p.Description), search) {
			continue
		}
		report.Items = append(report.Items, item)
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		a, b := report.Items[i], report.Items[j]
		if ua, ub := domaininv.Urgency(a.Status), domaininv.Urgency(b.Status); ua != ub {
			return ua < ub
		}
		if a.DaysLeft != b.DaysLeft {
			return a.DaysLeft < b.DaysLeft
		}
		return a.Product.Description < b.Product.Description
	})
	return report, nil
}

func (uc *ExpiryUseCase) item(p *entity.Product, lots []*entity.Lot, today time.Time) (ExpiryItem, bool) {
	active := make([]*entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.Active() {
			active = append(active, l)
		}
	}
	if len(active) == 0 {
		return ExpiryItem{}, false
	}
	domaininv.SortFIFO(active)

	item := ExpiryItem{Product: p, Lots: make([]LotExpiry, 0, len(active))}
	for _, l := range active {
		days := domaininv.DaysUntil(l.ExpiryDate, today)
		item.Lots = append(item.Lots, LotExpiry{
			Number:     l.Number,
			ExpiryDate: l.ExpiryDate,
			Stock:      l.Stock,
			DaysLeft:   days,
			Status:     domaininv.ExpiryStatus(days, uc.th),
		})
	}
	first := item.Lots[0]
	item.NextExpiry = first.ExpiryDate
	item.DaysLeft = first.DaysLeft
	item.Status = first.Status
	return item, true
}

func matchesFilter(filter, status string) bool {
	switch filter {
	case FilterExpired:
		return status == domaininv.ExpiryExpired
	case FilterCritical:
		return status == domaininv.ExpiryToday || status == domaininv.ExpiryCritical
	case FilterWarning:
		return status == domaininv.ExpiryWarning
	}
	return true
}

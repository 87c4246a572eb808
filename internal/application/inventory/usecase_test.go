package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	domaininv "github.com/jhoicas/sistema-bodega/internal/domain/inventory"
	"github.com/jhoicas/sistema-bodega/internal/infrastructure/memory"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)

type fakeRecorder struct {
	mu          sync.Mutex
	movements   map[string]int
	rejections  map[string]int
	corrections int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{movements: map[string]int{}, rejections: map[string]int{}}
}

func (f *fakeRecorder) ObserveMovement(direction string, qty int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movements[direction] += qty
}

func (f *fakeRecorder) ObserveRejection(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejections[reason]++
}

func (f *fakeRecorder) ObserveCorrection(string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corrections++
}

type fakePublisher struct {
	mu     sync.Mutex
	events []inventory.StockEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev inventory.StockEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

type fixture struct {
	store  *memory.Store
	repos  inventory.Repos
	engine *inventory.StockEngine
	rec    *fakeRecorder
	pub    *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	rec := newFakeRecorder()
	pub := &fakePublisher{}
	repos := store.Repos()
	engine := inventory.NewStockEngine(store, repos, logger.Nop(),
		inventory.WithRecorder(rec),
		inventory.WithPublisher(pub),
		inventory.WithClock(func() time.Time { return testNow }),
	)
	return &fixture{store: store, repos: repos, engine: engine, rec: rec, pub: pub}
}

func (f *fixture) product(t *testing.T, barcode string, tracks bool) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:           "p-" + barcode,
		Barcode:      barcode,
		Description:  "Producto " + barcode,
		Category:     entity.CategoryInsumosAseo,
		TracksExpiry: tracks,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	require.NoError(t, f.repos.Products.Create(context.Background(), p))
	return p
}

func (f *fixture) entry(t *testing.T, barcode string, qty int, expiry string) *inventory.StockResult {
	t.Helper()
	in := inventory.EntryInput{Barcode: barcode, Quantity: qty, UserID: "u-1"}
	if expiry != "" {
		d := day(expiry)
		in.ExpiryDate = &d
	}
	res, err := f.engine.RecordEntry(context.Background(), in)
	require.NoError(t, err)
	return res
}

// department da de alta un departamento con los funcionarios indicados.
func (f *fixture) department(t *testing.T, name string, officials ...string) {
	t.Helper()
	dir := inventory.NewDirectoryUseCase(f.store, f.repos, logger.Nop())
	_, err := dir.CreateDepartment(context.Background(), inventory.DepartmentInput{Name: name})
	require.NoError(t, err)
	for _, o := range officials {
		_, err := dir.AddOfficial(context.Background(), name, o)
		require.NoError(t, err)
	}
}

func (f *fixture) stock(t *testing.T, barcode string) int {
	t.Helper()
	p, err := f.repos.Products.GetByBarcode(context.Background(), barcode)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) lots(t *testing.T, barcode string) []*entity.Lot {
	t.Helper()
	p, err := f.repos.Products.GetByBarcode(context.Background(), barcode)
	require.NoError(t, err)
	lots, err := f.repos.Lots.ListByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	return lots
}

func (f *fixture) ledger(t *testing.T, barcode string) []*entity.Transaction {
	t.Helper()
	p, err := f.repos.Products.GetByBarcode(context.Background(), barcode)
	require.NoError(t, err)
	entries, err := f.repos.Transactions.ListByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	return entries
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordEntry
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordEntry_CreaLoteNuevoYMovimiento(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)

	res := f.entry(t, "770001", 30, "2025-01-10")

	assert.Equal(t, 0, res.PreviousStock)
	assert.Equal(t, 30, res.Stock)
	require.NotNil(t, res.Lot)
	assert.Equal(t, 1, res.Lot.Number)
	assert.Equal(t, 30, f.stock(t, "770001"))

	entries := f.ledger(t, "770001")
	require.Len(t, entries, 1)
	assert.Equal(t, entity.DirectionEntrada, entries[0].Direction)
	assert.Equal(t, 30, entries[0].Quantity)
	require.NotNil(t, entries[0].LotID)
	assert.Equal(t, res.Lot.ID, *entries[0].LotID)
	assert.Equal(t, 30, f.rec.movements[entity.DirectionEntrada])
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, inventory.EventMovementRecorded, f.pub.events[0].Type)
}

func TestRecordEntry_NumeroDeLoteSecuencial(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)

	f.entry(t, "770001", 10, "2025-03-01")
	res := f.entry(t, "770001", 5, "2025-03-01")

	assert.Equal(t, 2, res.Lot.Number, "misma fecha igual crea un lote nuevo")
	assert.Len(t, f.lots(t, "770001"), 2)
	assert.Equal(t, 15, f.stock(t, "770001"))
}

func TestRecordEntry_SinVencimientoEnProductoQueLoControla(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)

	_, err := f.engine.RecordEntry(context.Background(), inventory.EntryInput{Barcode: "770001", Quantity: 5})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "fecha_vencimiento", verr.Field)
	assert.Equal(t, 0, f.stock(t, "770001"))
	assert.Empty(t, f.ledger(t, "770001"))
	assert.Equal(t, 1, f.rec.rejections["validation"])
}

func TestRecordEntry_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", false)

	for _, qty := range []int{0, -3} {
		_, err := f.engine.RecordEntry(context.Background(), inventory.EntryInput{Barcode: "770001", Quantity: qty})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	assert.Equal(t, 0, f.stock(t, "770001"))
}

func TestRecordEntry_NumeroDeLoteRepetidoIncluyeAgotados(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	f.entry(t, "770001", 10, "2025-03-01")
	_, err := f.engine.ReduceStockFIFO(context.Background(), inventory.ExitInput{Barcode: "770001", Quantity: 10})
	require.NoError(t, err)

	one := 1
	exp := day("2025-04-01")
	_, err = f.engine.RecordEntry(context.Background(), inventory.EntryInput{
		Barcode: "770001", Quantity: 5, ExpiryDate: &exp, LotNumber: &one,
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "numero_lote", verr.Field)
	lots := f.lots(t, "770001")
	require.Len(t, lots, 1)
	assert.Equal(t, entity.LotStateDepleted, lots[0].State(), "un lote agotado no se reactiva")
}

func TestRecordEntry_ProductoSinVencimientoRechazaFecha(t *testing.T) {
	f := newFixture(t)
	f.product(t, "880001", false)
	exp := day("2025-04-01")

	_, err := f.engine.RecordEntry(context.Background(), inventory.EntryInput{Barcode: "880001", Quantity: 5, ExpiryDate: &exp})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	res, err := f.engine.RecordEntry(context.Background(), inventory.EntryInput{Barcode: "880001", Quantity: 5})
	require.NoError(t, err)
	assert.Nil(t, res.Lot)
	assert.Equal(t, 5, f.stock(t, "880001"))
	assert.Empty(t, f.lots(t, "880001"))
}

func TestRecordEntry_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.RecordEntry(context.Background(), inventory.EntryInput{Barcode: "nada", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReduceStockFIFO
// ──────────────────────────────────────────────────────────────────────────────

func TestReduceStockFIFO_ConsumePrimeroElQueVenceAntes(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	f.entry(t, "770001", 70, "2025-02-10") // lote 1 (B)
	f.entry(t, "770001", 30, "2025-01-10") // lote 2 (A)

	res, err := f.engine.ReduceStockFIFO(context.Background(), inventory.ExitInput{Barcode: "770001", Quantity: 50})
	require.NoError(t, err)

	assert.Equal(t, 50, res.Stock)
	require.Len(t, res.Draws, 2)
	assert.Equal(t, 2, res.Draws[0].LotNumber)
	assert.Equal(t, 30, res.Draws[0].Quantity)
	assert.Equal(t, 1, res.Draws[1].LotNumber)
	assert.Equal(t, 20, res.Draws[1].Quantity)

	lots := f.lots(t, "770001")
	require.Len(t, lots, 2, "el lote agotado se conserva")
	assert.Equal(t, 50, lots[0].Stock)
	assert.Equal(t, 0, lots[1].Stock)
	assert.Equal(t, entity.LotStateDepleted, lots[1].State())
	assert.Equal(t, 50, f.stock(t, "770001"))

	entries := f.ledger(t, "770001")
	require.Len(t, entries, 3)
	assert.Equal(t, entity.DirectionSalida, entries[2].Direction)
	assert.Equal(t, 50, entries[2].Quantity)
}

func TestReduceStockFIFO_StockInsuficienteNoModificaNada(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	f.entry(t, "770001", 30, "2025-01-10")
	f.entry(t, "770001", 70, "2025-02-10")

	_, err := f.engine.ReduceStockFIFO(context.Background(), inventory.ExitInput{Barcode: "770001", Quantity: 150})

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 100, insufficient.Available)
	assert.Equal(t, 150, insufficient.Requested)
	assert.Equal(t, "solo hay 100 unidades disponibles de 770001, se solicitaron 150", err.Error())
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 100, f.stock(t, "770001"))
	lots := f.lots(t, "770001")
	assert.Equal(t, 30, lots[0].Stock)
	assert.Equal(t, 70, lots[1].Stock)
	assert.Len(t, f.ledger(t, "770001"), 2)
	assert.Equal(t, 1, f.rec.rejections["insufficient_stock"])
}

func TestReduceStockFIFO_ProductoSinVencimiento(t *testing.T) {
	f := newFixture(t)
	f.product(t, "880001", false)
	f.entry(t, "880001", 20, "")

	res, err := f.engine.ReduceStockFIFO(context.Background(), inventory.ExitInput{Barcode: "880001", Quantity: 8})
	require.NoError(t, err)
	assert.Equal(t, 12, res.Stock)
	assert.Empty(t, res.Draws)

	_, err = f.engine.ReduceStockFIFO(context.Background(), inventory.ExitInput{Barcode: "880001", Quantity: 13})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 12, f.stock(t, "880001"))
}

func TestReduceStockFIFO_EntradaYSalidaDejanLoteAgotado(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	f.entry(t, "770001", 25, "2025-06-01")

	_, err := f.engine.ReduceStockFIFO(context.Background(), inventory.ExitInput{Barcode: "770001", Quantity: 25})
	require.NoError(t, err)

	assert.Equal(t, 0, f.stock(t, "770001"))
	lots := f.lots(t, "770001")
	require.Len(t, lots, 1)
	assert.Equal(t, entity.LotStateDepleted, lots[0].State())
}

func TestReduceStockFIFO_SalidasConcurrentesNoSobregiran(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	f.entry(t, "770001", 10, "2025-06-01")

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, rejected := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.ReduceStockFIFO(context.Background(), inventory.ExitInput{Barcode: "770001", Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, rejected)
	assert.Equal(t, 0, f.stock(t, "770001"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconcile
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_CorrigeDesfaseYEsIdempotente(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "770001", true)
	f.entry(t, "770001", 40, "2025-06-01")
	require.NoError(t, f.repos.Products.UpdateStock(context.Background(), p.ID, 55))

	res, err := f.engine.Reconcile(context.Background(), "770001")
	require.NoError(t, err)
	assert.True(t, res.Corrected)
	assert.Equal(t, 55, res.PreviousStock)
	assert.Equal(t, 40, res.Stock)
	assert.Equal(t, 40, f.stock(t, "770001"))
	assert.Equal(t, 1, f.rec.corrections)

	res, err = f.engine.Reconcile(context.Background(), "770001")
	require.NoError(t, err)
	assert.False(t, res.Corrected)
	assert.Equal(t, 40, res.Stock)
	assert.Len(t, f.lots(t, "770001"), 1)
}

func TestReconcile_ProductoSinVencimientoNoSeToca(t *testing.T) {
	f := newFixture(t)
	f.product(t, "880001", false)
	f.entry(t, "880001", 9, "")

	res, err := f.engine.Reconcile(context.Background(), "880001")
	require.NoError(t, err)
	assert.False(t, res.Tracked)
	assert.False(t, res.Corrected)
	assert.Equal(t, 9, f.stock(t, "880001"))
}

func TestReduceStockFIFO_CorrigeDesfaseAntesDeOperar(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "770001", true)
	f.entry(t, "770001", 40, "2025-06-01")
	require.NoError(t, f.repos.Products.UpdateStock(context.Background(), p.ID, 10))

	res, err := f.engine.ReduceStockFIFO(context.Background(), inventory.ExitInput{Barcode: "770001", Quantity: 15})
	require.NoError(t, err)
	assert.True(t, res.Corrected)
	assert.Equal(t, 10, res.PreviousStock, "stock guardado antes de la corrección")
	assert.Equal(t, 25, res.Stock)
	assert.Equal(t, 25, f.stock(t, "770001"))
}

func TestPublicarFallaNoRevierteElMovimiento(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker caído")
	f.product(t, "880001", false)

	res, err := f.engine.RecordEntry(context.Background(), inventory.EntryInput{Barcode: "880001", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stock)
	assert.Equal(t, 3, f.stock(t, "880001"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Secuencias mixtas
// ──────────────────────────────────────────────────────────────────────────────

// TestSecuencia_StockLotesYLibroCuadranEnCadaPaso mezcla entradas, salidas FIFO y reversiones
// (incluidas las rechazadas) y revisa después de cada paso que el stock coincida con los lotes
// activos y con el saldo del libro.
func TestSecuencia_StockLotesYLibroCuadranEnCadaPaso(t *testing.T) {
	f := newFixture(t)
	f.product(t, "T", true)
	f.product(t, "U", false)
	ctx := context.Background()

	type step struct {
		name    string
		run     func(txIDs map[int]string) (*inventory.StockResult, error)
		wantErr error
		tracked int
		plain   int
	}
	entry := func(barcode string, qty int, expiry string) func(map[int]string) (*inventory.StockResult, error) {
		return func(map[int]string) (*inventory.StockResult, error) {
			in := inventory.EntryInput{Barcode: barcode, Quantity: qty, UserID: "u-1"}
			if expiry != "" {
				d := day(expiry)
				in.ExpiryDate = &d
			}
			return f.engine.RecordEntry(ctx, in)
		}
	}
	exit := func(barcode string, qty int) func(map[int]string) (*inventory.StockResult, error) {
		return func(map[int]string) (*inventory.StockResult, error) {
			return f.engine.ReduceStockFIFO(ctx, inventory.ExitInput{Barcode: barcode, Quantity: qty, UserID: "u-1"})
		}
	}
	reverse := func(stepIdx int, expiry string) func(map[int]string) (*inventory.StockResult, error) {
		return func(txIDs map[int]string) (*inventory.StockResult, error) {
			in := inventory.CorrectionInput{TransactionID: txIDs[stepIdx], Reason: "corrección", UserID: "admin-1"}
			if expiry != "" {
				d := day(expiry)
				in.ExpiryDate = &d
			}
			return f.engine.CorrectEntry(ctx, in)
		}
	}

	steps := []step{
		{name: "entrada T lote 1", run: entry("T", 30, "2025-02-01"), tracked: 30},
		{name: "entrada T lote 2 vence antes", run: entry("T", 20, "2025-01-15"), tracked: 50},
		{name: "entrada U", run: entry("U", 50, ""), tracked: 50, plain: 50},
		{name: "salida T cruza dos lotes", run: exit("T", 25), tracked: 25, plain: 50},
		{name: "salida U", run: exit("U", 10), tracked: 25, plain: 40},
		{name: "revertir entrada con lote ya consumido", run: reverse(0, ""), wantErr: domain.ErrInsufficientStock, tracked: 25, plain: 40},
		{name: "revertir salida T", run: reverse(3, "2025-02-01"), tracked: 50, plain: 40},
		{name: "entrada T lote 4", run: entry("T", 5, "2025-03-01"), tracked: 55, plain: 40},
		{name: "revertir entrada T lote 4", run: reverse(7, ""), tracked: 50, plain: 40},
		{name: "salida T insuficiente", run: exit("T", 60), wantErr: domain.ErrInsufficientStock, tracked: 50, plain: 40},
		{name: "salida T deja todo en cero", run: exit("T", 50), tracked: 0, plain: 40},
		{name: "revertir salida U", run: reverse(4, ""), tracked: 0, plain: 50},
		{name: "revertir salida U otra vez", run: reverse(4, ""), wantErr: domain.ErrAlreadyReversed, tracked: 0, plain: 50},
		{name: "salida U deja todo en cero", run: exit("U", 50), tracked: 0, plain: 0},
		{name: "revertir entrada T sin stock", run: reverse(1, ""), wantErr: domain.ErrInsufficientStock, tracked: 0, plain: 0},
	}

	txIDs := map[int]string{}
	for i, st := range steps {
		res, err := st.run(txIDs)
		if st.wantErr != nil {
			require.ErrorIs(t, err, st.wantErr, "paso %d: %s", i, st.name)
		} else {
			require.NoError(t, err, "paso %d: %s", i, st.name)
			txIDs[i] = res.TransactionID
		}

		assert.Equal(t, st.tracked, f.stock(t, "T"), "paso %d: %s", i, st.name)
		assert.Equal(t, st.plain, f.stock(t, "U"), "paso %d: %s", i, st.name)
		assert.Equal(t, f.stock(t, "T"), domaininv.ActiveStock(f.lots(t, "T")), "paso %d: stock T = lotes activos", i)
		assert.Empty(t, f.lots(t, "U"), "paso %d: U no maneja lotes", i)
		for _, barcode := range []string{"T", "U"} {
			ledger := domaininv.RunningBalance(f.ledger(t, barcode))
			assert.Equal(t, f.stock(t, barcode), ledger.Balance, "paso %d: saldo del libro de %s", i, barcode)
			assert.Empty(t, ledger.FirstNegative, "paso %d: %s sin saldo negativo", i, barcode)
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Documentos del proveedor
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordEntry_DocumentosDelProveedorEnElKardex(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", false)
	ctx := context.Background()

	_, err := f.engine.RecordEntry(ctx, inventory.EntryInput{Barcode: "770001", Quantity: 10, Supplier: entity.SupplierDocs{
		RUT: "76.123.456-7", DispatchGuide: "GD-881", Invoice: "F-1020", PurchaseOrder: "OC-77",
	}})
	require.NoError(t, err)
	_, err = f.engine.RecordEntry(ctx, inventory.EntryInput{Barcode: "770001", Quantity: 5, Supplier: entity.SupplierDocs{Invoice: "F-1021"}})
	require.NoError(t, err)
	f.entry(t, "770001", 1, "")

	entries := f.ledger(t, "770001")
	require.Len(t, entries, 3)
	assert.Equal(t, "OC-77", entries[0].Supplier.PurchaseOrder, "el libro guarda los cuatro documentos")

	card, err := inventory.NewBincardUseCase(f.repos).History(ctx, "770001")
	require.NoError(t, err)
	require.Len(t, card.Rows, 3)
	assert.Equal(t, "Guía: GD-881", card.Rows[0].DocumentRef, "la guía tiene prioridad sobre la factura")
	assert.Equal(t, "76.123.456-7", card.Rows[0].SupplierRUT)
	assert.Equal(t, "Factura: F-1021", card.Rows[1].DocumentRef)
	assert.Empty(t, card.Rows[2].DocumentRef)
}

func TestRecordEntry_DocumentosDelProveedorDemasiadoLargos(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", false)

	_, err := f.engine.RecordEntry(context.Background(), inventory.EntryInput{
		Barcode: "770001", Quantity: 10, Supplier: entity.SupplierDocs{RUT: "76.123.456-789"},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "rut_proveedor", verr.Field)
	assert.Equal(t, 0, f.stock(t, "770001"))
}

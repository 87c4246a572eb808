package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/domain"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
	domaininv "github.com/jhoicas/sistema-bodega/internal/domain/inventory"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// CorrectEntry / ChangeLotExpiry
// ──────────────────────────────────────────────────────────────────────────────

func TestCorrectEntry_RevierteEntradaDesdeSuLote(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	f.entry(t, "770001", 30, "2025-01-10")
	wrong := f.entry(t, "770001", 12, "2025-05-01")

	res, err := f.engine.CorrectEntry(context.Background(), inventory.CorrectionInput{
		TransactionID: wrong.TransactionID,
		Reason:        "cantidad mal digitada",
		UserID:        "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, res.Stock)
	require.Len(t, res.Draws, 1)
	assert.Equal(t, wrong.Lot.Number, res.Draws[0].LotNumber)

	lots := f.lots(t, "770001")
	assert.Equal(t, 30, lots[0].Stock, "el lote que vence antes no se toca")
	assert.Equal(t, 0, lots[1].Stock)

	entries := f.ledger(t, "770001")
	require.Len(t, entries, 3)
	assert.Equal(t, 12, entries[1].Quantity, "el movimiento original queda intacto")
	require.NotNil(t, entries[2].Reverses)
	assert.Equal(t, wrong.TransactionID, *entries[2].Reverses)
	assert.Equal(t, entity.DirectionSalida, entries[2].Direction)
}

func TestCorrectEntry_SoloUnaVez(t *testing.T) {
	f := newFixture(t)
	f.product(t, "880001", false)
	wrong := f.entry(t, "880001", 5, "")

	in := inventory.CorrectionInput{TransactionID: wrong.TransactionID, Reason: "duplicada"}
	res, err := f.engine.CorrectEntry(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stock)

	_, err = f.engine.CorrectEntry(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrAlreadyReversed)

	_, err = f.engine.CorrectEntry(context.Background(), inventory.CorrectionInput{TransactionID: res.TransactionID, Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "una reversión no se revierte")
	assert.Equal(t, 0, f.stock(t, "880001"))
}

func TestCorrectEntry_RevierteSalidaConLoteNuevo(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	f.entry(t, "770001", 10, "2025-01-10")
	out, err := f.engine.ReduceStockFIFO(context.Background(), inventory.ExitInput{Barcode: "770001", Quantity: 10})
	require.NoError(t, err)

	_, err = f.engine.CorrectEntry(context.Background(), inventory.CorrectionInput{TransactionID: out.TransactionID, Reason: "no salió"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "requiere vencimiento")

	exp := day("2025-01-10")
	res, err := f.engine.CorrectEntry(context.Background(), inventory.CorrectionInput{
		TransactionID: out.TransactionID, Reason: "no salió", ExpiryDate: &exp,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Stock)
	require.NotNil(t, res.Lot)
	assert.Equal(t, 2, res.Lot.Number)

	lots := f.lots(t, "770001")
	require.Len(t, lots, 2)
	assert.Equal(t, entity.LotStateDepleted, lots[0].State())
}

func TestCorrectEntry_LoteYaConsumido(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	wrong := f.entry(t, "770001", 10, "2025-01-10")
	_, err := f.engine.ReduceStockFIFO(context.Background(), inventory.ExitInput{Barcode: "770001", Quantity: 4})
	require.NoError(t, err)

	_, err = f.engine.CorrectEntry(context.Background(), inventory.CorrectionInput{TransactionID: wrong.TransactionID, Reason: "error"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 6, f.stock(t, "770001"))
}

func TestCorrectEntry_MovimientoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CorrectEntry(context.Background(), inventory.CorrectionInput{TransactionID: "nada", Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangeLotExpiry_SoloCambiaLaFecha(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	f.entry(t, "770001", 10, "2025-01-10")

	lot, err := f.engine.ChangeLotExpiry(context.Background(), "770001", 1, day("2025-03-15"))
	require.NoError(t, err)
	assert.Equal(t, day("2025-03-15"), lot.ExpiryDate)

	lots := f.lots(t, "770001")
	assert.Equal(t, day("2025-03-15"), lots[0].ExpiryDate)
	assert.Equal(t, 10, lots[0].Stock)
	assert.Len(t, f.ledger(t, "770001"), 1)

	_, err = f.engine.ChangeLotExpiry(context.Background(), "770001", 9, day("2025-03-15"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReconcileAll
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcileAll_InformaYAplica(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "770001", true)
	f.product(t, "880001", false)
	f.entry(t, "770001", 20, "2025-02-01")
	f.entry(t, "880001", 5, "")
	require.NoError(t, f.repos.Products.UpdateStock(context.Background(), p.ID, 26))

	report, err := f.engine.ReconcileAll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Products)
	assert.Equal(t, 1, report.LotDrift)
	assert.Equal(t, 1, report.LedgerDrift)
	assert.Equal(t, 0, report.Corrected)
	require.Len(t, report.Lines, 1)
	assert.Equal(t, 26, f.stock(t, "770001"), "sin apply no se corrige")

	report, err = f.engine.ReconcileAll(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Corrected)
	assert.Equal(t, 0, report.LedgerDrift, "el libro cuadra tras corregir")
	assert.Equal(t, 20, f.stock(t, "770001"))

	report, err = f.engine.ReconcileAll(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, report.Lines)
}

// ──────────────────────────────────────────────────────────────────────────────
// Actas de entrega
// ──────────────────────────────────────────────────────────────────────────────

func TestDeliveryRegister_VariosProductosMismoNumero(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	f.product(t, "880001", false)
	f.entry(t, "770001", 30, "2025-01-10")
	f.entry(t, "880001", 10, "")
	f.department(t, "Urgencias", "María Pérez")
	f.department(t, "Farmacia", "Juan")
	uc := inventory.NewDeliveryUseCase(f.engine)

	res, err := uc.Register(context.Background(), inventory.DeliveryInput{
		Department: "Urgencias",
		Official:   "María Pérez",
		Items: []inventory.DeliveryItem{
			{Barcode: "880001", Quantity: 4},
			{Barcode: "770001", Quantity: 10},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Number)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, "880001", res.Lines[0].Barcode)
	assert.Equal(t, 6, f.stock(t, "880001"))
	assert.Equal(t, 20, f.stock(t, "770001"))

	entries := f.ledger(t, "770001")
	require.NotNil(t, entries[1].DeliveryID)

	got, err := uc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Urgencias", got.Department)
	assert.Len(t, got.Lines, 2)

	res, err = uc.Register(context.Background(), inventory.DeliveryInput{
		Department: "Farmacia",
		Official:   "Juan",
		Items:      []inventory.DeliveryItem{{Barcode: "880001", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Number)
}

func TestDeliveryRegister_UnProductoInsuficienteRechazaTodo(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	f.product(t, "880001", false)
	f.entry(t, "770001", 30, "2025-01-10")
	f.entry(t, "880001", 2, "")
	f.department(t, "Urgencias", "María")
	uc := inventory.NewDeliveryUseCase(f.engine)

	_, err := uc.Register(context.Background(), inventory.DeliveryInput{
		Department: "Urgencias",
		Official:   "María",
		Items: []inventory.DeliveryItem{
			{Barcode: "770001", Quantity: 10},
			{Barcode: "880001", Quantity: 3},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 30, f.stock(t, "770001"))
	assert.Equal(t, 2, f.stock(t, "880001"))
	assert.Len(t, f.ledger(t, "770001"), 1)

	_, err = uc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeliveryRegister_Validaciones(t *testing.T) {
	f := newFixture(t)
	uc := inventory.NewDeliveryUseCase(f.engine)

	cases := []inventory.DeliveryInput{
		{Official: "x", Items: []inventory.DeliveryItem{{Barcode: "1", Quantity: 1}}},
		{Department: "x", Official: "x"},
		{Department: "x", Official: "x", Items: []inventory.DeliveryItem{{Barcode: "1", Quantity: 0}}},
		{Department: "x", Official: "x", Items: []inventory.DeliveryItem{{Barcode: "1", Quantity: 1}, {Barcode: "1", Quantity: 2}}},
	}
	for _, in := range cases {
		_, err := uc.Register(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestDeliveryRegister_ValidaContraElDirectorio(t *testing.T) {
	f := newFixture(t)
	f.product(t, "880001", false)
	f.entry(t, "880001", 10, "")
	f.department(t, "Salud Pública", "Ana Soto")
	f.department(t, "Jurídico", "Luis")
	uc := inventory.NewDeliveryUseCase(f.engine)
	items := []inventory.DeliveryItem{{Barcode: "880001", Quantity: 1}}

	cases := []struct {
		name  string
		in    inventory.DeliveryInput
		field string
	}{
		{"departamento desconocido", inventory.DeliveryInput{Department: "Farmacia", Official: "Ana Soto", Items: items}, "departamento"},
		{"funcionario de otro departamento", inventory.DeliveryInput{Department: "Salud Pública", Official: "Luis", Items: items}, "funcionario"},
		{"responsable fuera del directorio", inventory.DeliveryInput{Department: "Salud Pública", Official: "Ana Soto", Responsible: "Pedro", Items: items}, "responsable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Register(context.Background(), tc.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
	assert.Equal(t, 10, f.stock(t, "880001"), "ningún rechazo descuenta stock")

	res, err := uc.Register(context.Background(), inventory.DeliveryInput{
		Department:  "salud pública",
		Official:    "ana soto",
		Responsible: "Secretaria Salud Pública",
		Items:       items,
	})
	require.NoError(t, err)
	assert.Equal(t, "Salud Pública", res.Department, "se guarda el nombre registrado")
	assert.Equal(t, "Ana Soto", res.Official)
	assert.Equal(t, "Secretaria Salud Pública", res.Responsible)
	assert.Equal(t, "Jefatura Salud Pública", res.SubdepartmentHead, "por defecto, la jefatura del departamento")

	got, err := uc.Get(context.Background(), res.Number)
	require.NoError(t, err)
	assert.Equal(t, "Jefatura Salud Pública", got.SubdepartmentHead)
}

func TestDeliveryRegister_DepartamentoDeshabilitado(t *testing.T) {
	f := newFixture(t)
	f.product(t, "880001", false)
	f.entry(t, "880001", 10, "")
	f.department(t, "Compin Malleco", "Rosa")
	dir := inventory.NewDirectoryUseCase(f.store, f.repos, logger.Nop())
	require.NoError(t, dir.DeactivateDepartment(context.Background(), "Compin Malleco"))

	_, err := inventory.NewDeliveryUseCase(f.engine).Register(context.Background(), inventory.DeliveryInput{
		Department:        "Compin Malleco",
		Official:          "Rosa",
		SubdepartmentHead: "Dr. Vera",
		Items:             []inventory.DeliveryItem{{Barcode: "880001", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeliveryList_PaginaYFiltra(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", false)
	f.product(t, "880001", false)
	f.entry(t, "770001", 100, "")
	f.entry(t, "880001", 100, "")
	f.department(t, "Bodega", "Ana")
	f.department(t, "Seremi de Salud", "Luis")
	uc := inventory.NewDeliveryUseCase(f.engine)

	for i := 0; i < 12; i++ {
		in := inventory.DeliveryInput{
			Department:  "Bodega",
			Official:    "Ana",
			Responsible: "Jefatura Bodega",
			Items:       []inventory.DeliveryItem{{Barcode: "770001", Quantity: 1}, {Barcode: "880001", Quantity: 2}},
		}
		if i%3 == 0 {
			in = inventory.DeliveryInput{Department: "Seremi de Salud", Official: "Luis", Items: []inventory.DeliveryItem{{Barcode: "770001", Quantity: 1}}}
		}
		_, err := uc.Register(context.Background(), in)
		require.NoError(t, err)
	}

	page, total, err := uc.List(context.Background(), inventory.DeliveryListInput{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, page, 5)
	assert.Equal(t, 12, page[0].Number, "la más reciente primero")
	assert.Equal(t, 2, page[0].Items)
	assert.Equal(t, 3, page[0].Units)

	page, _, err = uc.List(context.Background(), inventory.DeliveryListInput{Limit: 5, Offset: 10})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 1, page[1].Number)

	page, total, err = uc.List(context.Background(), inventory.DeliveryListInput{Number: "1"})
	require.NoError(t, err)
	assert.Equal(t, 4, total, "1, 10, 11 y 12")

	_, total, err = uc.List(context.Background(), inventory.DeliveryListInput{Department: "seremi de salud"})
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	_, total, err = uc.List(context.Background(), inventory.DeliveryListInput{Responsible: "jefatura"})
	require.NoError(t, err)
	assert.Equal(t, 8, total)

	_, _, err = uc.List(context.Background(), inventory.DeliveryListInput{Number: "1%"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Directorio
// ──────────────────────────────────────────────────────────────────────────────

func TestDirectory_CrearConResponsablesPorDefecto(t *testing.T) {
	f := newFixture(t)
	dir := inventory.NewDirectoryUseCase(f.store, f.repos, logger.Nop())

	view, err := dir.CreateDepartment(context.Background(), inventory.DepartmentInput{
		Name:      "Acción Sanitaria",
		Officials: map[string]string{entity.KindJefatura: "Dra. Muñoz"},
	})
	require.NoError(t, err)
	names := map[string]string{}
	for _, o := range view.Officials {
		names[o.Kind] = o.Name
	}
	assert.Equal(t, map[string]string{
		entity.KindJefatura:             "Dra. Muñoz",
		entity.KindJefaturaSubrogante:   "Jefatura Acción Sanitaria(s)",
		entity.KindSecretaria:           "Secretaria Acción Sanitaria",
		entity.KindSecretariaSubrogante: "Secretaria Acción Sanitaria(s)",
	}, names)

	_, err = dir.CreateDepartment(context.Background(), inventory.DepartmentInput{Name: "acción sanitaria"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = dir.CreateDepartment(context.Background(), inventory.DepartmentInput{Name: "X", Officials: map[string]string{"Director": "y"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDirectory_ModificarYDeshabilitar(t *testing.T) {
	f := newFixture(t)
	f.department(t, "Jurídico", "Luis")
	dir := inventory.NewDirectoryUseCase(f.store, f.repos, logger.Nop())

	view, err := dir.UpdateDepartment(context.Background(), "Jurídico", inventory.DepartmentInput{
		Name:      "Departamento Jurídico",
		Officials: map[string]string{entity.KindSecretaria: "Carla"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Departamento Jurídico", view.Department.Name)

	list, err := dir.Officials(context.Background(), "Departamento Jurídico")
	require.NoError(t, err)
	byKind := map[string]string{}
	for _, o := range list {
		byKind[o.Kind] = o.Name
	}
	assert.Equal(t, "Carla", byKind[entity.KindSecretaria])
	assert.Equal(t, "Jefatura Departamento Jurídico", byKind[entity.KindJefatura])
	assert.Equal(t, "Luis", byKind[entity.KindFuncionario], "los funcionarios no se renombran")

	_, err = dir.AddOfficial(context.Background(), "Departamento Jurídico", "luis")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, dir.DeactivateDepartment(context.Background(), "Departamento Jurídico"))
	active, err := dir.ListDepartments(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := dir.ListDepartments(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Department.Active)

	assert.ErrorIs(t, dir.DeactivateDepartment(context.Background(), "Departamento Jurídico"), domain.ErrNotFound)
	_, err = dir.Officials(context.Background(), "Finanzas")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Bincard
// ──────────────────────────────────────────────────────────────────────────────

func TestBincardHistory_SaldoAcumuladoYActa(t *testing.T) {
	f := newFixture(t)
	f.product(t, "770001", true)
	f.entry(t, "770001", 30, "2025-01-10")
	f.entry(t, "770001", 70, "2025-02-10")
	f.department(t, "Pabellón", "Ana")
	_, err := inventory.NewDeliveryUseCase(f.engine).Register(context.Background(), inventory.DeliveryInput{
		Department: "Pabellón",
		Official:   "Ana",
		Items:      []inventory.DeliveryItem{{Barcode: "770001", Quantity: 50}},
	})
	require.NoError(t, err)

	card, err := inventory.NewBincardUseCase(f.repos).History(context.Background(), "770001")
	require.NoError(t, err)
	require.Len(t, card.Rows, 3)
	assert.Equal(t, []int{30, 100, 50}, []int{card.Rows[0].Saldo, card.Rows[1].Saldo, card.Rows[2].Saldo})
	assert.Equal(t, 1, card.Rows[2].DeliveryNumber)
	assert.Equal(t, "Pabellón", card.Rows[2].Department)
	assert.Equal(t, 100, card.TotalIn)
	assert.Equal(t, 50, card.TotalOut)
	assert.False(t, card.LedgerDrift)
	assert.False(t, card.LotDrift)
	assert.Len(t, card.Lots, 2)
}

func TestBincardHistory_InformaDesfaseSinCorregir(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "770001", true)
	f.entry(t, "770001", 30, "2025-01-10")
	require.NoError(t, f.repos.Products.UpdateStock(context.Background(), p.ID, 31))

	card, err := inventory.NewBincardUseCase(f.repos).History(context.Background(), "770001")
	require.NoError(t, err)
	assert.True(t, card.LedgerDrift)
	assert.True(t, card.LotDrift)
	assert.Equal(t, 31, f.stock(t, "770001"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Control de vencimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestExpiryControl_EstadosFiltrosYOrden(t *testing.T) {
	f := newFixture(t)
	for _, b := range []string{"A1", "B1", "C1", "D1", "E1"} {
		f.product(t, b, true)
	}
	f.product(t, "Z1", false)
	f.entry(t, "A1", 5, "2025-01-01") // vencido
	f.entry(t, "B1", 5, "2025-01-05") // vence hoy
	f.entry(t, "C1", 5, "2025-01-09") // crítico
	f.entry(t, "D1", 5, "2025-01-30") // precaución
	f.entry(t, "E1", 5, "2025-06-01") // normal
	f.entry(t, "E1", 5, "2025-01-20") // el lote más próximo manda
	f.entry(t, "Z1", 5, "")
	uc := inventory.NewExpiryUseCase(f.repos, domaininv.DefaultThresholds(), func() time.Time { return testNow })

	report, err := uc.Control(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, report.Items, 5)
	got := make([]string, 0, len(report.Items))
	for _, it := range report.Items {
		got = append(got, it.Product.Barcode)
	}
	assert.Equal(t, []string{"A1", "B1", "C1", "E1", "D1"}, got)
	assert.Equal(t, domaininv.ExpiryWarning, report.Items[3].Status)
	assert.Len(t, report.Items[3].Lots, 2)
	assert.Equal(t, inventory.ExpiryStats{Expired: 1, Critical: 2, Warning: 2, Normal: 0}, report.Stats)

	report, err = uc.Control(context.Background(), inventory.FilterCritical, "")
	require.NoError(t, err)
	assert.Len(t, report.Items, 2)
	assert.Equal(t, 1, report.Stats.Expired, "las estadísticas no dependen del filtro")

	report, err = uc.Control(context.Background(), inventory.FilterAll, "producto c1")
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Equal(t, "C1", report.Items[0].Product.Barcode)

	_, err = uc.Control(context.Background(), "raro", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Package memory implementa los puertos de persistencia en memoria del proceso.
// Se usa con STORAGE_DRIVER=memory y en los tests de los casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products     map[string]*entity.Product // por ID
	lots         map[string]*entity.Lot     // por ID
	transactions []*entity.Transaction      // orden de inserción
	deliveries   []*entity.Delivery
	departments  map[string]*entity.Department // por ID
	officials    []*entity.Official
}

func newState() *state {
	return &state{
		products:    make(map[string]*entity.Product),
		lots:        make(map[string]*entity.Lot),
		departments: make(map[string]*entity.Department),
	}
}

// clone copia profunda; las filas se copian por valor para que el rollback no vea escrituras.
func (s *state) clone() *state {
	c := newState()
	for id, p := range s.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, l := range s.lots {
		cl := *l
		c.lots[id] = &cl
	}
	c.transactions = make([]*entity.Transaction, len(s.transactions))
	for i, t := range s.transactions {
		ct := *t
		c.transactions[i] = &ct
	}
	c.deliveries = make([]*entity.Delivery, len(s.deliveries))
	for i, d := range s.deliveries {
		cd := *d
		c.deliveries[i] = &cd
	}
	for id, d := range s.departments {
		cd := *d
		c.departments[id] = &cd
	}
	c.officials = make([]*entity.Official, len(s.officials))
	for i, o := range s.officials {
		co := *o
		c.officials[i] = &co
	}
	return c
}

// Store guarda todo en memoria. Run toma el lock de todo el store durante la transacción,
// así las operaciones sobre cualquier producto quedan serializadas.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn con repositorios atados a la transacción. Si fn falla se restaura la copia previa.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Repos devuelve repositorios fuera de transacción: cada llamada toma el lock.
func (s *Store) Repos() inventory.Repos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) inventory.Repos {
	h := handle{s: s, inTx: inTx}
	return inventory.Repos{
		Products:     &ProductRepo{h},
		Lots:         &LotRepo{h},
		Transactions: &TransactionRepo{h},
		Deliveries:   &DeliveryRepo{h},
		Departments:  &DepartmentRepo{h},
	}
}

// handle da acceso al estado. Dentro de Run el lock ya está tomado.
type handle struct {
	s    *Store
	inTx bool
}

func (h handle) with(fn func(d *state) error) error {
	if !h.inTx {
		h.s.mu.Lock()
		defer h.s.mu.Unlock()
	}
	return fn(h.s.data)
}

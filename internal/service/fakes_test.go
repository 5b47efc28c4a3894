package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"shelfpulse/internal/inference/inferencetest"
	"shelfpulse/internal/models"
	"shelfpulse/internal/repository"
	"shelfpulse/pkg/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memState is the visible content of the fake database for one transaction level.
type memState struct {
	predictions []models.Prediction
	nextID      int64
}

func (s memState) clone() memState {
	return memState{
		predictions: append([]models.Prediction(nil), s.predictions...),
		nextID:      s.nextID,
	}
}

// memDB fakes the pool. Products are fixed; predictions follow transaction
// and savepoint semantics through fakeTx.
type memDB struct {
	products   []*models.Product
	committed  memState
	failCommit bool
}

func newMemDB(products ...*models.Product) *memDB {
	for i, p := range products {
		p.ID = int64(i + 1)
	}
	return &memDB{products: products, committed: memState{nextID: 1}}
}

func (db *memDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("memDB: raw SQL not supported")
}

func (db *memDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("memDB: raw SQL not supported")
}

func (db *memDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("memDB: raw SQL not supported")
}

func (db *memDB) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{db: db, state: db.committed.clone()}, nil
}

// latest returns the committed latest predictions of a product.
func (db *memDB) latest(productID int64) []models.Prediction {
	var out []models.Prediction
	for _, p := range db.committed.predictions {
		if p.ProductID == productID && p.IsLatest {
			out = append(out, p)
		}
	}
	return out
}

// fakeTx embeds pgx.Tx only to satisfy the interface; the stores never call
// its SQL methods.
type fakeTx struct {
	pgx.Tx
	db     *memDB
	parent *fakeTx
	state  memState
	done   bool
}

func (tx *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	if tx.done {
		return nil, pgx.ErrTxClosed
	}
	return &fakeTx{db: tx.db, parent: tx, state: tx.state.clone()}, nil
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	if tx.parent != nil {
		tx.parent.state = tx.state
		return nil
	}
	if tx.db.failCommit {
		return errors.New("commit failed")
	}
	tx.db.committed = tx.state
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	return nil
}

func stateOf(q postgres.Querier) *memState {
	switch v := q.(type) {
	case *fakeTx:
		return &v.state
	case *memDB:
		return &v.committed
	}
	panic("unexpected querier")
}

func dbOf(q postgres.Querier) *memDB {
	switch v := q.(type) {
	case *fakeTx:
		return v.db
	case *memDB:
		return v
	}
	panic("unexpected querier")
}

type fakeProductStore struct {
	lastFilter repository.ProductFilter
	listErr    error
	onList     func()
}

func (s *fakeProductStore) List(_ context.Context, q postgres.Querier) ([]*models.Product, error) {
	if s.onList != nil {
		s.onList()
	}
	if s.listErr != nil {
		return nil, s.listErr
	}
	return dbOf(q).products, nil
}

func (s *fakeProductStore) GetBySKU(_ context.Context, q postgres.Querier, sku string) (*models.Product, error) {
	for _, p := range dbOf(q).products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeProductStore) Search(_ context.Context, q postgres.Querier, filter repository.ProductFilter) ([]*models.ProductPrediction, error) {
	s.lastFilter = filter
	st := stateOf(q)
	var out []*models.ProductPrediction
	for _, p := range dbOf(q).products {
		for i := range st.predictions {
			if pr := st.predictions[i]; pr.ProductID == p.ID && pr.IsLatest {
				out = append(out, &models.ProductPrediction{Product: p, Prediction: &pr})
			}
		}
	}
	if filter.Offset >= uint64(len(out)) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if uint64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakePredictionStore struct {
	failInsert map[int64]bool
	// afterGetLatest runs once GetLatest has read its result and before it
	// returns.
	afterGetLatest func()
}

func (s *fakePredictionStore) DemoteLatest(_ context.Context, q postgres.Querier, productID int64) (int64, error) {
	st := stateOf(q)
	var n int64
	for i := range st.predictions {
		if st.predictions[i].ProductID == productID && st.predictions[i].IsLatest {
			st.predictions[i].IsLatest = false
			n++
		}
	}
	return n, nil
}

func (s *fakePredictionStore) Insert(_ context.Context, q postgres.Querier, p *models.Prediction) error {
	if s.failInsert[p.ProductID] {
		return errors.New("insert failed")
	}
	st := stateOf(q)
	p.ID = st.nextID
	p.CreatedAt = time.Unix(1700000000+p.ID, 0)
	st.nextID++
	st.predictions = append(st.predictions, *p)
	return nil
}

func (s *fakePredictionStore) GetLatest(_ context.Context, q postgres.Querier, productID int64) (*models.Prediction, error) {
	var found *models.Prediction
	for _, p := range stateOf(q).predictions {
		if p.ProductID == productID && p.IsLatest {
			p := p
			found = &p
			break
		}
	}
	if hook := s.afterGetLatest; hook != nil {
		hook()
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (s *fakePredictionStore) History(_ context.Context, q postgres.Querier, productID int64, limit uint64) ([]*models.Prediction, error) {
	var out []*models.Prediction
	for _, p := range stateOf(q).predictions {
		if p.ProductID == productID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func product(sku string) *models.Product {
	return &models.Product{SKU: sku, Features: inferencetest.Record()}
}

// brokenProduct lacks a feature the spoilage model needs.
func brokenProduct(sku string) *models.Product {
	p := product(sku)
	delete(p.Features, "Waste_Risk_Index")
	return p
}

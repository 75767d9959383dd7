package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderLines repo.OrderLineRepository
	cartLines  repo.CartLineRepository
	addresses  repo.AddressRepository
	catalog    repo.CatalogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderLines() repo.OrderLineRepository { return r.orderLines }
func (r *TxReposMock) CartLines() repo.CartLineRepository   { return r.cartLines }
func (r *TxReposMock) Addresses() repo.AddressRepository    { return r.addresses }
func (r *TxReposMock) Catalog() repo.CatalogRepository      { return r.catalog }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) MarkPaid(ctx context.Context, orderID int64, payType *string, paidAt time.Time, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, payType, paidAt, status)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkShipped(ctx context.Context, orderID int64, shippedAt time.Time, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, shippedAt, status)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkDelivered(ctx context.Context, orderID int64, receivedAt time.Time) error {
	args := m.Called(ctx, orderID, receivedAt)
	return args.Error(0)
}

func (m *OrderRepoMock) MarkCanceled(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

var _ repo.OrderRepository = (*OrderRepoMock)(nil)

type OrderLineRepoMock struct{ mock.Mock }

func (m *OrderLineRepoMock) CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error {
	args := m.Called(ctx, orderID, lines)
	return args.Error(0)
}

func (m *OrderLineRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	args := m.Called(ctx, orderID)
	lines, _ := args.Get(0).([]model.OrderLine)
	return lines, args.Error(1)
}

var _ repo.OrderLineRepository = (*OrderLineRepoMock)(nil)

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Address)
	return items, args.Error(1)
}

func (m *AddressRepoMock) FindByIDForUser(ctx context.Context, userID int64, addressID int64) (model.Address, error) {
	args := m.Called(ctx, userID, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

var _ repo.AddressRepository = (*AddressRepoMock)(nil)

type CatalogRepoMock struct{ mock.Mock }

func (m *CatalogRepoMock) FindSkuDetail(ctx context.Context, skuID int64) (model.SkuDetail, error) {
	args := m.Called(ctx, skuID)
	d, _ := args.Get(0).(model.SkuDetail)
	return d, args.Error(1)
}

var _ repo.CatalogRepository = (*CatalogRepoMock)(nil)

type CartLineRepoMock struct{ mock.Mock }

func (m *CartLineRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]model.CartLine)
	return lines, args.Error(1)
}

func (m *CartLineRepoMock) ListByIDsForUser(ctx context.Context, userID int64, lineIDs []int64) ([]model.CartLine, error) {
	args := m.Called(ctx, userID, lineIDs)
	lines, _ := args.Get(0).([]model.CartLine)
	return lines, args.Error(1)
}

func (m *CartLineRepoMock) FindByIDForUser(ctx context.Context, userID int64, lineID int64) (model.CartLine, error) {
	args := m.Called(ctx, userID, lineID)
	l, _ := args.Get(0).(model.CartLine)
	return l, args.Error(1)
}

func (m *CartLineRepoMock) UpsertMerge(ctx context.Context, userID int64, skuID int64, addQty int64) error {
	args := m.Called(ctx, userID, skuID, addQty)
	return args.Error(0)
}

func (m *CartLineRepoMock) UpdateQuantity(ctx context.Context, lineID int64, qty int64) error {
	args := m.Called(ctx, lineID, qty)
	return args.Error(0)
}

func (m *CartLineRepoMock) DeleteByIDForUser(ctx context.Context, userID int64, lineID int64) error {
	args := m.Called(ctx, userID, lineID)
	return args.Error(0)
}

func (m *CartLineRepoMock) DeleteByIDsForUser(ctx context.Context, userID int64, lineIDs []int64) (int64, error) {
	args := m.Called(ctx, userID, lineIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CartLineRepoMock) SetSelected(ctx context.Context, userID int64, lineIDs []int64, selected bool) (int64, error) {
	args := m.Called(ctx, userID, lineIDs, selected)
	return args.Get(0).(int64), args.Error(1)
}

var _ repo.CartLineRepository = (*CartLineRepoMock)(nil)

// =====================
// In-memory fake（マージ・所有スコープの不変条件を実挙動で確認する用）
// =====================

type fakeCartLineRepo struct {
	mu     sync.Mutex
	nextID int64
	lines  map[int64]model.CartLine
}

func newFakeCartLineRepo() *fakeCartLineRepo {
	return &fakeCartLineRepo{nextID: 1, lines: map[int64]model.CartLine{}}
}

func (f *fakeCartLineRepo) ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.CartLine{}
	//新しい順（id降順）
	for id := f.nextID - 1; id >= 1; id-- {
		if l, ok := f.lines[id]; ok && l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeCartLineRepo) ListByIDsForUser(ctx context.Context, userID int64, lineIDs []int64) ([]model.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.CartLine{}
	for _, id := range lineIDs {
		if l, ok := f.lines[id]; ok && l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeCartLineRepo) FindByIDForUser(ctx context.Context, userID int64, lineID int64) (model.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.lines[lineID]
	if !ok || l.UserID != userID {
		return model.CartLine{}, repo.ErrNotFound
	}
	return l, nil
}

func (f *fakeCartLineRepo) UpsertMerge(ctx context.Context, userID int64, skuID int64, addQty int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, l := range f.lines {
		if l.UserID == userID && l.SkuID == skuID {
			l.Quantity += addQty
			if l.Quantity < 1 {
				l.Quantity = 1
			}
			f.lines[id] = l
			return nil
		}
	}

	f.lines[f.nextID] = model.CartLine{
		ID:       f.nextID,
		UserID:   userID,
		SkuID:    skuID,
		Quantity: addQty,
		Selected: true,
	}
	f.nextID++
	return nil
}

func (f *fakeCartLineRepo) UpdateQuantity(ctx context.Context, lineID int64, qty int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.lines[lineID]
	if !ok {
		return repo.ErrNotFound
	}
	l.Quantity = qty
	f.lines[lineID] = l
	return nil
}

func (f *fakeCartLineRepo) DeleteByIDForUser(ctx context.Context, userID int64, lineID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if l, ok := f.lines[lineID]; ok && l.UserID == userID {
		delete(f.lines, lineID)
	}
	return nil
}

func (f *fakeCartLineRepo) DeleteByIDsForUser(ctx context.Context, userID int64, lineIDs []int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, id := range lineIDs {
		if l, ok := f.lines[id]; ok && l.UserID == userID {
			delete(f.lines, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeCartLineRepo) SetSelected(ctx context.Context, userID int64, lineIDs []int64, selected bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, id := range lineIDs {
		if l, ok := f.lines[id]; ok && l.UserID == userID {
			l.Selected = selected
			f.lines[id] = l
			n++
		}
	}
	return n, nil
}

var _ repo.CartLineRepository = (*fakeCartLineRepo)(nil)

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

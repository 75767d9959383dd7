package usecase_test

import (
	"context"
	"errors"
	"testing"

	"mall/internal/domain/model"
	repo "mall/internal/repository"
	"mall/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testAddress(userID int64) model.Address {
	return model.Address{
		ID:         7,
		UserID:     userID,
		Name:       "山田太郎",
		Phone:      "090-0000-0000",
		Province:   "東京都",
		City:       "新宿区",
		Detail:     "1-2-3",
		PostalCode: "160-0001",
	}
}

// =====================
// Preview
// =====================

// S1(10.00)x2 + S2(5.00)x1 = 25.00
func TestOrderUsecase_Preview_TotalsFromCurrentCatalog(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartLineRepoMock)
	catalog := new(CatalogRepoMock)
	addresses := new(AddressRepoMock)
	tx := new(TxManagerMock)

	lines := []model.CartLine{
		{ID: 1, UserID: 100, SkuID: 1, Quantity: 2, Selected: true},
		{ID: 2, UserID: 100, SkuID: 2, Quantity: 1, Selected: true},
	}

	cartRepo.On("ListByIDsForUser", mock.Anything, int64(100), []int64{1, 2}).Return(lines, nil)
	catalog.On("FindSkuDetail", mock.Anything, int64(1)).Return(skuDetail(1, "10.00", "Tシャツ"), nil)
	catalog.On("FindSkuDetail", mock.Anything, int64(2)).Return(skuDetail(2, "5.00", "マグカップ"), nil)

	uc := usecase.NewOrderUsecase(tx, cartRepo, catalog, addresses)

	out, err := uc.Preview(ctx, 100, []int64{1, 2})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(out.Lines))
	assert.True(t, decimal.RequireFromString("25.00").Equal(out.TotalAmount), "total=%s", out.TotalAmount)
	assert.True(t, decimal.RequireFromString("20.00").Equal(out.Lines[0].LineTotal))

	cartRepo.AssertExpectations(t)
	catalog.AssertExpectations(t)
}

// 存在しない・他人のline_idは黙って落ちる（エラーではない）
func TestOrderUsecase_Preview_UnknownIDsDropped(t *testing.T) {
	ctx := context.Background()

	cartRepo := new(CartLineRepoMock)
	catalog := new(CatalogRepoMock)
	addresses := new(AddressRepoMock)
	tx := new(TxManagerMock)

	//999は解決されない
	cartRepo.On("ListByIDsForUser", mock.Anything, int64(100), []int64{1, 999}).Return([]model.CartLine{
		{ID: 1, UserID: 100, SkuID: 1, Quantity: 1, Selected: true},
	}, nil)
	catalog.On("FindSkuDetail", mock.Anything, int64(1)).Return(skuDetail(1, "10.00", "Tシャツ"), nil)

	uc := usecase.NewOrderUsecase(tx, cartRepo, catalog, addresses)

	out, err := uc.Preview(ctx, 100, []int64{1, 999})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Lines))
}

func TestOrderUsecase_Preview_EmptySelection(t *testing.T) {
	uc := usecase.NewOrderUsecase(new(TxManagerMock), new(CartLineRepoMock), new(CatalogRepoMock), new(AddressRepoMock))

	_, err := uc.Preview(context.Background(), 100, []int64{})
	assertErrContains(t, err, "no cart lines selected")
}

// =====================
// CreateOrder
// =====================

type createOrderMocks struct {
	tx         *TxManagerMock
	orders     *OrderRepoMock
	orderLines *OrderLineRepoMock
	cartLines  *CartLineRepoMock
	addresses  *AddressRepoMock
	catalog    *CatalogRepoMock
	uc         *usecase.OrderUsecase
}

func newCreateOrderMocks() *createOrderMocks {
	m := &createOrderMocks{
		tx:         new(TxManagerMock),
		orders:     new(OrderRepoMock),
		orderLines: new(OrderLineRepoMock),
		cartLines:  new(CartLineRepoMock),
		addresses:  new(AddressRepoMock),
		catalog:    new(CatalogRepoMock),
	}
	m.tx.Repos = &TxReposMock{
		orders:     m.orders,
		orderLines: m.orderLines,
		cartLines:  m.cartLines,
		addresses:  m.addresses,
		catalog:    m.catalog,
	}
	//注文確定はtx内のrepoを使うので、非tx側にも同じモックを渡しておく
	m.uc = usecase.NewOrderUsecase(m.tx, m.cartLines, m.catalog, m.addresses)
	return m
}

func TestOrderUsecase_CreateOrder_Success(t *testing.T) {
	ctx := context.Background()
	m := newCreateOrderMocks()

	lines := []model.CartLine{
		{ID: 1, UserID: 100, SkuID: 1, Quantity: 2, Selected: true},
		{ID: 2, UserID: 100, SkuID: 2, Quantity: 1, Selected: true},
	}

	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.addresses.On("FindByIDForUser", mock.Anything, int64(100), int64(7)).Return(testAddress(100), nil)
	m.cartLines.On("ListByIDsForUser", mock.Anything, int64(100), []int64{1, 2}).Return(lines, nil)
	m.catalog.On("FindSkuDetail", mock.Anything, int64(1)).Return(skuDetail(1, "10.00", "Tシャツ"), nil)
	m.catalog.On("FindSkuDetail", mock.Anything, int64(2)).Return(skuDetail(2, "5.00", "マグカップ"), nil)

	var createdOrder model.Order
	m.orders.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		createdOrder = args.Get(1).(model.Order)
	}).Return(int64(55), nil)

	var createdLines []model.OrderLine
	m.orderLines.On("CreateBulk", mock.Anything, int64(55), mock.Anything).Run(func(args mock.Arguments) {
		createdLines = args.Get(2).([]model.OrderLine)
	}).Return(nil)

	m.cartLines.On("DeleteByIDsForUser", mock.Anything, int64(100), []int64{1, 2}).Return(int64(2), nil)

	out, err := m.uc.CreateOrder(ctx, 100, usecase.CreateOrderInput{
		LineIDs:   []int64{1, 2},
		AddressID: 7,
		Remark:    "午前中配達希望",
	})
	assert.NoError(t, err)

	//payable = 合計 - 割引 + 送料（今はどちらも0）
	assert.True(t, decimal.RequireFromString("25.00").Equal(out.PayAmount), "pay=%s", out.PayAmount)
	assert.True(t, decimal.RequireFromString("25.00").Equal(createdOrder.TotalAmount))
	assert.True(t, createdOrder.DiscountAmount.IsZero())
	assert.True(t, createdOrder.FreightAmount.IsZero())

	//初期状態は3軸ともスタート位置
	assert.Equal(t, model.OrderStatusUnpaid, createdOrder.Status)
	assert.Equal(t, model.PayStatusUnpaid, createdOrder.PayStatus)
	assert.Equal(t, model.DeliveryStatusPending, createdOrder.DeliveryStatus)
	assert.NotEmpty(t, createdOrder.OrderSn)

	//住所はスナップショットとして凍結される
	assert.Equal(t, "山田太郎", createdOrder.Address.ReceiverName)
	assert.Equal(t, "東京都", createdOrder.Address.ReceiverProvince)

	//明細は2本、単価はこの呼び出し時点の価格
	assert.Equal(t, 2, len(createdLines))
	assert.True(t, decimal.RequireFromString("10.00").Equal(createdLines[0].Snapshot.Price))
	assert.True(t, decimal.RequireFromString("10.00").Equal(createdLines[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("20.00").Equal(createdLines[0].TotalPrice))

	m.tx.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.orderLines.AssertExpectations(t)
	m.cartLines.AssertExpectations(t)
}

func TestOrderUsecase_CreateOrder_EmptyLineIDs(t *testing.T) {
	m := newCreateOrderMocks()

	_, err := m.uc.CreateOrder(context.Background(), 100, usecase.CreateOrderInput{
		LineIDs:   []int64{},
		AddressID: 7,
	})
	assertErrContains(t, err, "no cart lines selected")

	//トランザクションすら開かない
	m.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestOrderUsecase_CreateOrder_AddressNotOwned(t *testing.T) {
	ctx := context.Background()
	m := newCreateOrderMocks()

	m.tx.On("WithinTx", mock.Anything).Return(nil)
	//他人の住所は「無い」と同じ返事になる
	m.addresses.On("FindByIDForUser", mock.Anything, int64(100), int64(7)).Return(model.Address{}, repo.ErrNotFound)

	_, err := m.uc.CreateOrder(ctx, 100, usecase.CreateOrderInput{
		LineIDs:   []int64{1},
		AddressID: 7,
	})
	assertErrContains(t, err, "address not found")

	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 確定済みの再送信（行が全部消えている）はcart emptyで止まり、重複注文は作られない
func TestOrderUsecase_CreateOrder_RetryAfterConsumedLines(t *testing.T) {
	ctx := context.Background()
	m := newCreateOrderMocks()

	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.addresses.On("FindByIDForUser", mock.Anything, int64(100), int64(7)).Return(testAddress(100), nil)
	m.cartLines.On("ListByIDsForUser", mock.Anything, int64(100), []int64{1, 2}).Return([]model.CartLine{}, nil)

	_, err := m.uc.CreateOrder(ctx, 100, usecase.CreateOrderInput{
		LineIDs:   []int64{1, 2},
		AddressID: 7,
	})
	assertErrContains(t, err, "cart empty")

	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 明細の書き込みが失敗したらエラーで抜ける（txごとロールバックされ、カートは消えない）
func TestOrderUsecase_CreateOrder_LineWriteFailureAbortsBeforeCartCleanup(t *testing.T) {
	ctx := context.Background()
	m := newCreateOrderMocks()

	lines := []model.CartLine{
		{ID: 1, UserID: 100, SkuID: 1, Quantity: 2, Selected: true},
	}

	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.addresses.On("FindByIDForUser", mock.Anything, int64(100), int64(7)).Return(testAddress(100), nil)
	m.cartLines.On("ListByIDsForUser", mock.Anything, int64(100), []int64{1}).Return(lines, nil)
	m.catalog.On("FindSkuDetail", mock.Anything, int64(1)).Return(skuDetail(1, "10.00", "Tシャツ"), nil)
	m.orders.On("Create", mock.Anything, mock.Anything).Return(int64(55), nil)
	m.orderLines.On("CreateBulk", mock.Anything, int64(55), mock.Anything).Return(errors.New("insert failed"))

	_, err := m.uc.CreateOrder(ctx, 100, usecase.CreateOrderInput{
		LineIDs:   []int64{1},
		AddressID: 7,
	})
	assertErrContains(t, err, "db error")

	//カート掃除まで到達しない
	m.cartLines.AssertNotCalled(t, "DeleteByIDsForUser", mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// GetMyOrderDetail
// =====================

// カタログの価格が変わっても、注文の明細はスナップショットの値を返し続ける
func TestOrderUsecase_GetMyOrderDetail_SnapshotImmutable(t *testing.T) {
	ctx := context.Background()
	m := newCreateOrderMocks()

	frozen := model.Order{
		ID:        55,
		UserID:    100,
		Status:    model.OrderStatusUnpaid,
		PayAmount: decimal.RequireFromString("20.00"),
	}
	frozenLines := []model.OrderLine{
		{
			ID:      1,
			OrderID: 55,
			SkuID:   1,
			Snapshot: model.SkuSnapshot{
				Price:      decimal.RequireFromString("10.00"),
				Attributes: model.AttributeList{{Key: "color", Value: "red"}},
				SpuName:    "Tシャツ",
			},
			Quantity:   2,
			UnitPrice:  decimal.RequireFromString("10.00"),
			TotalPrice: decimal.RequireFromString("20.00"),
		},
	}

	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.orders.On("FindByID", mock.Anything, int64(55)).Return(frozen, nil)
	m.orderLines.On("ListByOrderID", mock.Anything, int64(55)).Return(frozenLines, nil)

	//カタログ側は値上がり済みだが、参照されないこと自体が不変性の証明
	m.catalog.On("FindSkuDetail", mock.Anything, int64(1)).Return(skuDetail(1, "99.00", "Tシャツ"), nil)

	out, err := m.uc.GetMyOrderDetail(ctx, 100, 55)
	assert.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10.00").Equal(out.Lines[0].UnitPrice), "unit=%s", out.Lines[0].UnitPrice)
	assert.Equal(t, "Tシャツ", out.Lines[0].SpuName)

	m.catalog.AssertNotCalled(t, "FindSkuDetail", mock.Anything, mock.Anything)
}

// 他人の注文は「存在しない扱い」
func TestOrderUsecase_GetMyOrderDetail_ForeignOrderNotFound(t *testing.T) {
	ctx := context.Background()
	m := newCreateOrderMocks()

	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.orders.On("FindByID", mock.Anything, int64(55)).Return(model.Order{ID: 55, UserID: 200}, nil)

	_, err := m.uc.GetMyOrderDetail(ctx, 100, 55)
	assertErrContains(t, err, "not found")

	m.orderLines.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
}

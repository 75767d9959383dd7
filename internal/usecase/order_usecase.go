package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 注文のプレビュー・確定・参照。
// 「計算」（何度でもやり直せる）と「確定」（1トランザクションで全部or何もしない）を分ける。
type OrderUsecase struct {
	tx           repo.TransactionManager
	cartLineRepo repo.CartLineRepository
	catalogRepo  repo.CatalogRepository
	addressRepo  repo.AddressRepository
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	cartLineRepo repo.CartLineRepository,
	catalogRepo repo.CatalogRepository,
	addressRepo repo.AddressRepository,
) *OrderUsecase {
	return &OrderUsecase{
		tx:           tx,
		cartLineRepo: cartLineRepo,
		catalogRepo:  catalogRepo,
		addressRepo:  addressRepo,
	}
}

// プレビューの1行。永続化されない計算結果で、毎回カタログの現在値から作り直す
type PreviewLine struct {
	LineID      int64               `json:"line_id"`
	SkuID       int64               `json:"sku_id"`
	SpuName     string              `json:"spu_name"`
	SpuSubtitle string              `json:"spu_subtitle"`
	SpuImage    string              `json:"spu_image"`
	Attributes  model.AttributeList `json:"attributes"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	Quantity    int64               `json:"quantity"`
	LineTotal   decimal.Decimal     `json:"line_total"`
}

type PreviewOutput struct {
	Lines       []PreviewLine   `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type CreateOrderInput struct {
	LineIDs   []int64
	AddressID int64
	Remark    string
	PayType   *string
}

type OrderLineOutput struct {
	SkuID       int64               `json:"sku_id"`
	SpuName     string              `json:"spu_name"`
	SpuSubtitle string              `json:"spu_subtitle"`
	SpuImage    string              `json:"spu_image"`
	Attributes  model.AttributeList `json:"attributes"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	Quantity    int64               `json:"quantity"`
	TotalPrice  decimal.Decimal     `json:"total_price"`
}

type OrderOutput struct {
	ID             int64                 `json:"id"`
	OrderSn        string                `json:"order_sn"`
	UserID         int64                 `json:"user_id"`
	Status         string                `json:"status"`
	PayStatus      string                `json:"pay_status"`
	DeliveryStatus string                `json:"delivery_status"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	FreightAmount  decimal.Decimal       `json:"freight_amount"`
	PayAmount      decimal.Decimal       `json:"pay_amount"`
	PayType        *string               `json:"pay_type"`
	Address        model.AddressSnapshot `json:"address"`
	Remark         string                `json:"remark"`
	PaidAt         *time.Time            `json:"paid_at"`
	ShippedAt      *time.Time            `json:"shipped_at"`
	ReceivedAt     *time.Time            `json:"received_at"`
	CreatedAt      time.Time             `json:"created_at"`
	Lines          []OrderLineOutput     `json:"lines"`
}

// Preview は確認画面用の計算。読み取りだけで、何度呼んでも副作用はない。
// 存在しない・他人のline_idは黙って落とす
func (u *OrderUsecase) Preview(ctx context.Context, userID int64, lineIDs []int64) (PreviewOutput, error) {
	if userID <= 0 {
		return PreviewOutput{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}
	if len(lineIDs) == 0 {
		return PreviewOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "no cart lines selected")
	}

	lines, total, err := u.computePreview(ctx, userID, lineIDs, u.cartLineRepo, u.catalogRepo)
	if err != nil {
		return PreviewOutput{}, err
	}

	return PreviewOutput{Lines: lines, TotalAmount: total}, nil
}

// CreateOrder は注文確定。
// ヘッダ作成・明細作成・カート掃除を1トランザクションで行い、途中で失敗したら全部戻す。
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}
	if len(in.LineIDs) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "no cart lines selected")
	}
	if in.AddressID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidAddress, "invalid address_id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//住所の存在＋所有チェック（他人の住所も「無い」扱い）
		addr, err := r.Addresses().FindByIDForUser(ctx, userID, in.AddressID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, KindInvalidAddress, "address not found")
			}
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		//クライアントの合計は信用しない。ここで計算し直す
		order, orderLines, err := u.buildOrderAndLines(ctx, userID, in, addr, r.CartLines(), r.Catalog())
		if err != nil {
			return err
		}

		//ヘッダ作成
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		//明細一括作成
		if err := r.OrderLines().CreateBulk(ctx, orderID, orderLines); err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		//消費したカート行を削除
		//user_idとidの両方で絞る。既に消えている行はスキップされるだけでエラーにしない
		if _, err := r.CartLines().DeleteByIDsForUser(ctx, userID, in.LineIDs); err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderLines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}

	//ページングはまずは固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
			}
			outs = append(outs, toOrderOutput(o, lines))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		out = toOrderOutput(o, lines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// プレビュー計算の本体。Preview（非tx）とbuildOrderAndLines（tx内）で共用する
func (u *OrderUsecase) computePreview(
	ctx context.Context,
	userID int64,
	lineIDs []int64,
	cartLines repo.CartLineRepository,
	catalog repo.CatalogRepository,
) ([]PreviewLine, decimal.Decimal, error) {
	lines, err := cartLines.ListByIDsForUser(ctx, userID, lineIDs)
	if err != nil {
		return nil, decimal.Zero, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	previews := make([]PreviewLine, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		d, err := catalog.FindSkuDetail(ctx, line.SkuID)
		if errors.Is(err, repo.ErrNotFound) {
			//カタログから消えたSKUは注文できない
			return nil, decimal.Zero, NewHTTPError(http.StatusNotFound, KindNotFound, "sku not found")
		}
		if err != nil {
			return nil, decimal.Zero, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		lineTotal := d.Price.Mul(decimal.NewFromInt(line.Quantity))

		previews = append(previews, PreviewLine{
			LineID:      line.ID,
			SkuID:       line.SkuID,
			SpuName:     d.SpuName,
			SpuSubtitle: d.SpuSubtitle,
			SpuImage:    d.SpuImage,
			Attributes:  d.Attributes,
			UnitPrice:   d.Price,
			Quantity:    line.Quantity,
			LineTotal:   lineTotal,
		})

		total = total.Add(lineTotal)
	}

	return previews, total, nil
}

// buildOrderAndLines はOrderとOrderLineをメモリ上で組み立てる。永続化はしない。
// スナップショットはこの呼び出しで計算した価格・属性をそのまま凍結する
func (u *OrderUsecase) buildOrderAndLines(
	ctx context.Context,
	userID int64,
	in CreateOrderInput,
	addr model.Address,
	cartLines repo.CartLineRepository,
	catalog repo.CatalogRepository,
) (model.Order, []model.OrderLine, error) {
	previews, total, err := u.computePreview(ctx, userID, in.LineIDs, cartLines, catalog)
	if err != nil {
		return model.Order{}, nil, err
	}

	//行が全部消えていたら確定できない（確定済みの再送信はここで止まる）
	if len(previews) == 0 {
		return model.Order{}, nil, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "cart empty")
	}

	//割引・送料は今は常に0
	discount := decimal.Zero
	freight := decimal.Zero
	payable := total.Sub(discount).Add(freight)

	now := time.Now()
	order := model.Order{
		OrderSn:        uuid.NewString(),
		UserID:         userID,
		TotalAmount:    total,
		DiscountAmount: discount,
		FreightAmount:  freight,
		PayAmount:      payable,
		PayType:        in.PayType,
		Status:         model.OrderStatusUnpaid,
		PayStatus:      model.PayStatusUnpaid,
		DeliveryStatus: model.DeliveryStatusPending,
		Address:        addr.Snapshot(),
		Remark:         in.Remark,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	orderLines := make([]model.OrderLine, 0, len(previews))
	for _, p := range previews {
		orderLines = append(orderLines, model.OrderLine{
			SkuID: p.SkuID,
			Snapshot: model.SkuSnapshot{
				Price:       p.UnitPrice,
				Attributes:  p.Attributes,
				SpuName:     p.SpuName,
				SpuSubtitle: p.SpuSubtitle,
				SpuImage:    p.SpuImage,
			},
			Quantity:   p.Quantity,
			UnitPrice:  p.UnitPrice,
			TotalPrice: p.LineTotal,
			CreatedAt:  now,
		})
	}

	return order, orderLines, nil
}

func toOrderOutput(o model.Order, lines []model.OrderLine) OrderOutput {
	outLines := make([]OrderLineOutput, 0, len(lines))
	for _, l := range lines {
		outLines = append(outLines, OrderLineOutput{
			SkuID:       l.SkuID,
			SpuName:     l.Snapshot.SpuName,
			SpuSubtitle: l.Snapshot.SpuSubtitle,
			SpuImage:    l.Snapshot.SpuImage,
			Attributes:  l.Snapshot.Attributes,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			TotalPrice:  l.TotalPrice,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		OrderSn:        o.OrderSn,
		UserID:         o.UserID,
		Status:         string(o.Status),
		PayStatus:      string(o.PayStatus),
		DeliveryStatus: string(o.DeliveryStatus),
		TotalAmount:    o.TotalAmount,
		DiscountAmount: o.DiscountAmount,
		FreightAmount:  o.FreightAmount,
		PayAmount:      o.PayAmount,
		PayType:        o.PayType,
		Address:        o.Address,
		Remark:         o.Remark,
		PaidAt:         o.PaidAt,
		ShippedAt:      o.ShippedAt,
		ReceivedAt:     o.ReceivedAt,
		CreatedAt:      o.CreatedAt,
		Lines:          outLines,
	}
}

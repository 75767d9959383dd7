package repository

import (
	"context"
	"time"

	"mall/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//状態遷移用。行ロック付きで現在の永続状態を読む
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)

	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)

	Create(ctx context.Context, order model.Order) (int64, error)

	//以下は遷移ごとの明示的な更新。対象カラム以外には触らない

	//支払確定: pay_status / status / pay_type / paid_at
	MarkPaid(ctx context.Context, orderID int64, payType *string, paidAt time.Time, status model.OrderStatus) error

	//出荷: delivery_status / status / shipped_at
	MarkShipped(ctx context.Context, orderID int64, shippedAt time.Time, status model.OrderStatus) error

	//受取: delivery_status / status / received_at
	MarkDelivered(ctx context.Context, orderID int64, receivedAt time.Time) error

	//キャンセル: statusのみ
	MarkCanceled(ctx context.Context, orderID int64) error
}

type OrderLineRepository interface {
	CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error)
}

package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"
)

// 注文の状態遷移（注文・支払・配送の3軸）。
// 遷移判定は必ず行ロック付きで読み直した永続状態に対して行う。
// 前提が崩れていたらInvalidStateで失敗し、自動リトライはしない。
type OrderStateUsecase struct {
	tx repo.TransactionManager
}

func NewOrderStateUsecase(tx repo.TransactionManager) *OrderStateUsecase {
	return &OrderStateUsecase{tx: tx}
}

type ConfirmPaymentInput struct {
	PayType *string
}

// ConfirmPayment は支払確定（外部ゲートウェイは無し、直接確定する）。
// UNPAID以外からの確定は二重課金になるので拒否
func (u *OrderStateUsecase) ConfirmPayment(ctx context.Context, orderID int64, in ConfirmPaymentInput) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		if o.Status != model.OrderStatusUnpaid {
			return NewHTTPError(http.StatusConflict, KindInvalidState, "order is not unpaid")
		}

		//支払確定と同時に注文をTO_BE_SHIPPEDへ進める
		if err := r.Orders().MarkPaid(ctx, orderID, in.PayType, time.Now(), model.OrderStatusToBeShipped); err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		return nil
	})
}

// Ship は出荷。配送軸がPENDINGのときだけ合法。
// 支払記録より先の出荷も運用上ありえるので、注文軸はUNPAID/TO_BE_SHIPPEDのどちらからでもSHIPPEDへ進める
func (u *OrderStateUsecase) Ship(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		if o.DeliveryStatus != model.DeliveryStatusPending {
			return NewHTTPError(http.StatusConflict, KindInvalidState, "already shipped")
		}
		if o.Status == model.OrderStatusCanceled {
			return NewHTTPError(http.StatusConflict, KindInvalidState, "order canceled")
		}

		status := o.Status
		if status == model.OrderStatusUnpaid || status == model.OrderStatusToBeShipped {
			status = model.OrderStatusShipped
		}

		if err := r.Orders().MarkShipped(ctx, orderID, time.Now(), status); err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		return nil
	})
}

// MarkDelivered は管理側からの受取記録。注文軸がSHIPPEDのときだけ合法
func (u *OrderStateUsecase) MarkDelivered(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		return u.receive(ctx, r, o)
	})
}

// ConfirmReceipt はユーザー本人の受取確認。他人の注文は存在しない扱い
func (u *OrderStateUsecase) ConfirmReceipt(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
		}

		return u.receive(ctx, r, o)
	})
}

// 受取遷移の本体。配送DELIVERED・注文COMPLETEDへ
func (u *OrderStateUsecase) receive(ctx context.Context, r repo.TxRepos, o model.Order) error {
	if o.Status != model.OrderStatusShipped {
		return NewHTTPError(http.StatusConflict, KindInvalidState, "order is not shipped")
	}

	if err := r.Orders().MarkDelivered(ctx, o.ID, time.Now()); err != nil {
		return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}
	return nil
}

// Cancel はキャンセル。UNPAID/TO_BE_SHIPPEDのときだけ合法。
// 出荷後キャンセル（返品・返金）は扱わない。支払・配送のカラムには触らない
func (u *OrderStateUsecase) Cancel(ctx context.Context, userID int64, orderID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
		}

		if o.Status != model.OrderStatusUnpaid && o.Status != model.OrderStatusToBeShipped {
			return NewHTTPError(http.StatusConflict, KindInvalidState, "cannot cancel")
		}

		if err := r.Orders().MarkCanceled(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}
		return nil
	})
}

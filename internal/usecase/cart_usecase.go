package usecase

import (
	"context"
	"errors"
	"net/http"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// カート行は(user, sku)で一意。同一SKUの追加は数量加算になる。
type CartUsecase struct {
	cartLineRepo repo.CartLineRepository
	catalogRepo  repo.CatalogRepository
}

func NewCartUsecase(
	cartLineRepo repo.CartLineRepository,
	catalogRepo repo.CatalogRepository,
) *CartUsecase {
	return &CartUsecase{
		cartLineRepo: cartLineRepo,
		catalogRepo:  catalogRepo,
	}
}

// priceは現在のカタログ価格。カートは価格を凍結しない（凍結は注文確定時）
type CartLineResponse struct {
	ID          int64               `json:"id"`
	SkuID       int64               `json:"sku_id"`
	SpuName     string              `json:"spu_name"`
	SpuSubtitle string              `json:"spu_subtitle"`
	SpuImage    string              `json:"spu_image"`
	Attributes  model.AttributeList `json:"attributes"`
	Price       decimal.Decimal     `json:"price"`
	Quantity    int64               `json:"quantity"`
	Selected    bool                `json:"selected"`
	LineTotal   decimal.Decimal     `json:"line_total"`
}

// totalは選択中の行だけの合計
type CartResponse struct {
	Lines []CartLineResponse `json:"lines"`
	Total decimal.Decimal    `json:"total"`
}

type AddCartInput struct {
	SkuID    int64
	Quantity int64
}

type UpdateQuantityInput struct {
	Quantity int64
}

// 数量0以下は削除扱い。呼び出し側はRemovedを見て行が消えたことを知る
type UpdateQuantityOutput struct {
	Removed bool         `json:"removed"`
	Cart    CartResponse `json:"cart"`
}

type SetSelectedInput struct {
	LineIDs  []int64
	Selected bool
}

type SetSelectedOutput struct {
	Updated int64        `json:"updated"`
	Cart    CartResponse `json:"cart"`
}

// GetCart はカート一覧（新しい順、SKU/SPUの表示情報つき）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}

	return u.buildCartResponse(ctx, userID)
}

// AddToCart はカートに追加（同一SKUは数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}
	if in.SkuID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid sku_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid quantity")
	}

	//SKUが解決できない追加は拒否
	if _, err := u.catalogRepo.FindSkuDetail(ctx, in.SkuID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, KindNotFound, "sku not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	if err := u.cartLineRepo.UpsertMerge(ctx, userID, in.SkuID, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 数量変更。0以下は削除として扱い、Removed=trueで返す
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, lineID int64, in UpdateQuantityInput) (UpdateQuantityOutput, error) {
	if userID <= 0 {
		return UpdateQuantityOutput{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}
	if lineID <= 0 {
		return UpdateQuantityOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	//所有チェック（他人の行は存在しない扱い）
	if _, err := u.cartLineRepo.FindByIDForUser(ctx, userID, lineID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return UpdateQuantityOutput{}, NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
		}
		return UpdateQuantityOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	if in.Quantity <= 0 {
		//削除扱い
		if err := u.cartLineRepo.DeleteByIDForUser(ctx, userID, lineID); err != nil {
			return UpdateQuantityOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
		}

		cart, err := u.buildCartResponse(ctx, userID)
		if err != nil {
			return UpdateQuantityOutput{}, err
		}
		return UpdateQuantityOutput{Removed: true, Cart: cart}, nil
	}

	if err := u.cartLineRepo.UpdateQuantity(ctx, lineID, in.Quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return UpdateQuantityOutput{}, NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
		}
		return UpdateQuantityOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	cart, err := u.buildCartResponse(ctx, userID)
	if err != nil {
		return UpdateQuantityOutput{}, err
	}
	return UpdateQuantityOutput{Removed: false, Cart: cart}, nil
}

// 行削除。既に無い場合も成功扱い
func (u *CartUsecase) Remove(ctx context.Context, userID int64, lineID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}
	if lineID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	if err := u.cartLineRepo.DeleteByIDForUser(ctx, userID, lineID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	return u.buildCartResponse(ctx, userID)
}

// 選択フラグの一括更新。他人の行は黙って対象外（件数にも入らない）
func (u *CartUsecase) SetSelected(ctx context.Context, userID int64, in SetSelectedInput) (SetSelectedOutput, error) {
	if userID <= 0 {
		return SetSelectedOutput{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}
	if len(in.LineIDs) == 0 {
		return SetSelectedOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "no lines")
	}

	updated, err := u.cartLineRepo.SetSelected(ctx, userID, in.LineIDs, in.Selected)
	if err != nil {
		return SetSelectedOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	cart, err := u.buildCartResponse(ctx, userID)
	if err != nil {
		return SetSelectedOutput{}, err
	}
	return SetSelectedOutput{Updated: updated, Cart: cart}, nil
}

// カート行にカタログの表示情報を結合してまとめる
func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	lines, err := u.cartLineRepo.ListByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	respLines := make([]CartLineResponse, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		d, err := u.catalogRepo.FindSkuDetail(ctx, line.SkuID)
		if err != nil {
			//カタログから消えたSKUは表示から落とす
			continue
		}

		lineTotal := d.Price.Mul(decimal.NewFromInt(line.Quantity))

		respLines = append(respLines, CartLineResponse{
			ID:          line.ID,
			SkuID:       line.SkuID,
			SpuName:     d.SpuName,
			SpuSubtitle: d.SpuSubtitle,
			SpuImage:    d.SpuImage,
			Attributes:  d.Attributes,
			Price:       d.Price,
			Quantity:    line.Quantity,
			Selected:    line.Selected,
			LineTotal:   lineTotal,
		})

		if line.Selected {
			total = total.Add(lineTotal)
		}
	}

	return CartResponse{Lines: respLines, Total: total}, nil
}

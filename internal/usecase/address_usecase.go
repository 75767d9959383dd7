package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"mall/internal/domain/model"
	repo "mall/internal/repository"
)

// 住所の登録・一覧。注文確定はここで登録された住所のIDを受け取る
type AddressUsecase struct {
	addressRepo repo.AddressRepository
}

func NewAddressUsecase(addressRepo repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addressRepo: addressRepo}
}

type CreateAddressInput struct {
	Name       string
	Phone      string
	Province   string
	City       string
	County     string
	Town       string
	Detail     string
	PostalCode string
	IsDefault  bool
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, in CreateAddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "name required")
	}
	if strings.TrimSpace(in.Province) == "" || strings.TrimSpace(in.City) == "" || strings.TrimSpace(in.Detail) == "" {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "address incomplete")
	}

	created, err := u.addressRepo.Create(ctx, model.Address{
		UserID:     userID,
		Name:       in.Name,
		Phone:      in.Phone,
		Province:   in.Province,
		City:       in.City,
		County:     in.County,
		Town:       in.Town,
		Detail:     in.Detail,
		PostalCode: in.PostalCode,
		IsDefault:  in.IsDefault,
	})
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}
	return created, nil
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	if userID <= 0 {
		return []model.Address{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}

	items, err := u.addressRepo.ListByUserID(ctx, userID)
	if err != nil {
		return []model.Address{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}
	return items, nil
}

func (u *AddressUsecase) Get(ctx context.Context, userID int64, addressID int64) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "unauthorized")
	}
	if addressID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid id")
	}

	a, err := u.addressRepo.FindByIDForUser(ctx, userID, addressID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Address{}, NewHTTPError(http.StatusNotFound, KindNotFound, "not found")
	}
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}
	return a, nil
}

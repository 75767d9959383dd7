package usecase

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"mall/internal/domain/model"
	repo "mall/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// JWTを発行する約束。具体実装はmainで組み立てる
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

type AuthUsecase struct {
	userRepo   repo.UserRepository
	issuer     AccessTokenIssuer
	bcryptCost int
}

func NewAuthUsecase(userRepo repo.UserRepository, issuer AccessTokenIssuer, bcryptCost int) *AuthUsecase {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthUsecase{userRepo: userRepo, issuer: issuer, bcryptCost: bcryptCost}
}

type RegisterInput struct {
	Email    string
	Password string
}

type RegisterOutput struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	UserID      int64  `json:"user_id"`
	Role        string `json:"role"`
}

// 会員登録
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "invalid email")
	}
	if len(in.Password) < 8 {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "password too short")
	}

	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}
	if existing != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusConflict, KindInvalidRequest, "email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.bcryptCost)
	if err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "hash error")
	}

	now := time.Now()
	user := model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, &user); err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}

	return RegisterOutput{ID: user.ID, Email: user.Email, Role: string(user.Role)}, nil
}

// ログイン。成功したらアクセストークンを返す
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, KindInvalidRequest, "email and password required")
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "db error")
	}
	//ユーザー不在もパスワード不一致も同じ返事にする
	if user == nil || !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, KindInvalidRequest, "invalid credentials")
	}

	now := time.Now()
	token, expiresAt, err := u.issuer.Issue(user.ID, user.Role, now)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, KindInternal, "token error")
	}

	return LoginOutput{
		AccessToken: token,
		ExpiresIn:   int(expiresAt.Sub(now).Seconds()),
		UserID:      user.ID,
		Role:        string(user.Role),
	}, nil
}

package main

import (
	"log"
	"time"

	"mall/internal/config"
	"mall/internal/domain/model"
	"mall/internal/handler"
	"mall/internal/infra/db"
	infraRepo "mall/internal/infra/repository"
	"mall/internal/server"
	"mall/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envは無くても動く（環境変数直指定）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Spu{},
		&model.Sku{},
		&model.Address{},
		&model.CartLine{},
		&model.Order{},
		&model.OrderLine{},
	); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	cartLineRepo := infraRepo.NewCartLineGormRepository(gormDB)
	catalogRepo := infraRepo.NewCatalogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, issuer, 12)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	cartUC := usecase.NewCartUsecase(cartLineRepo, catalogRepo)
	orderUC := usecase.NewOrderUsecase(txManager, cartLineRepo, catalogRepo, addressRepo)
	stateUC := usecase.NewOrderStateUsecase(txManager)

	//Handler生成
	authH := handler.NewAuthHandler(authUC)
	addressH := handler.NewAddressHandler(addressUC)
	cartH := handler.NewCartHandler(cartUC)
	orderH := handler.NewOrderHandler(orderUC, stateUC)
	adminOrderH := handler.NewAdminOrderHandler(stateUC)

	//Server起動
	addr := ":" + cfg.Port

	if err := server.Start(addr, cfg, authH, addressH, cartH, orderH, adminOrderH); err != nil {
		log.Fatal(err)
	}
}

package handler

import (
	"net/http"
	"strconv"

	"mall/internal/config"
	"mall/internal/middleware"
	"mall/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 管理側のフルフィルメント操作（支払確定・出荷・受取記録）
type AdminOrderHandler struct {
	stateUc *usecase.OrderStateUsecase
}

func NewAdminOrderHandler(stateUc *usecase.OrderStateUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{stateUc: stateUc}
}

type ConfirmPaymentRequest struct {
	PayType *string `json:"pay_type"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/:id/payment", h.confirmPayment)
	g.POST("/:id/ship", h.ship)
	g.POST("/:id/deliver", h.deliver)
}

func (h *AdminOrderHandler) confirmPayment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.stateUc.ConfirmPayment(c.Request().Context(), id, usecase.ConfirmPaymentInput{
		PayType: req.PayType,
	}); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "paid"})
}

func (h *AdminOrderHandler) ship(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.stateUc.Ship(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "shipped"})
}

func (h *AdminOrderHandler) deliver(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.stateUc.MarkDelivered(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "delivered"})
}

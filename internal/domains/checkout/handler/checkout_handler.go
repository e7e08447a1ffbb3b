package handler

import (
	"errors"
	"net/http"

	"holyfit-backend/internal/domains/checkout/model"
	"holyfit-backend/internal/domains/checkout/service"
	storeModel "holyfit-backend/internal/domains/store/model"
	"holyfit-backend/internal/shared/middleware"
	"holyfit-backend/internal/shared/response"
	"holyfit-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Checkout - POST /v1/checkout
func (h *Handler) Checkout(c *gin.Context) {
	var req model.CustomerInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		if response.ValidationError(c, err) {
			return
		}
		switch {
		case errors.Is(err, model.ErrEmptyCart):
			response.ErrorResponse(c, http.StatusUnprocessableEntity, "EMPTY_CART", "Your cart is empty")
		case errors.Is(err, storeModel.ErrSessionRequired):
			response.ErrorResponse(c, http.StatusBadRequest, "SESSION_REQUIRED", err.Error())
		default:
			logger.Error("Checkout failed", err)
			response.InternalServerError(c, "Checkout failed")
		}
		return
	}

	response.Success(c, http.StatusCreated, "Order created", result)
}

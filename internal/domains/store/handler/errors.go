package handler

import (
	"errors"
	"net/http"

	cartModel "holyfit-backend/internal/domains/cart/model"
	catalogModel "holyfit-backend/internal/domains/catalog/model"
	"holyfit-backend/internal/domains/store/model"
	"holyfit-backend/internal/shared/response"
	"holyfit-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// handleError maps domain errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	if response.ValidationError(c, err) {
		return
	}

	switch {
	case errors.Is(err, model.ErrSessionRequired):
		response.ErrorResponse(c, http.StatusBadRequest, "SESSION_REQUIRED", err.Error())
	case errors.Is(err, catalogModel.ErrProductNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, cartModel.ErrInvalidQuantity),
		errors.Is(err, cartModel.ErrQuantityTooHigh):
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_QUANTITY", err.Error())
	case errors.Is(err, cartModel.ErrVariantSelectionRequired),
		errors.Is(err, cartModel.ErrUnknownVariant):
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_VARIANT", err.Error())
	case errors.Is(err, cartModel.ErrOutOfStock):
		response.ErrorResponse(c, http.StatusConflict, "OUT_OF_STOCK", err.Error())
	case errors.Is(err, cartModel.ErrCouponNotFound):
		response.ErrorResponse(c, http.StatusNotFound, "INVALID_COUPON", err.Error())
	case errors.Is(err, cartModel.ErrCouponMinimumNotMet):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, "COUPON_MINIMUM_NOT_MET", err.Error())
	case errors.Is(err, cartModel.ErrCouponInFlight):
		response.ErrorResponse(c, http.StatusConflict, "COUPON_IN_PROGRESS", err.Error())
	default:
		logger.Error("Store request failed", err)
		response.InternalServerError(c, "Internal server error")
	}
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BizPilotApp/bizpilot_backend/internal/apperrors"
	"github.com/BizPilotApp/bizpilot_backend/internal/dto"
)

// respondServiceError maps service errors onto HTTP statuses and the failure
// envelope. Validation and state errors surface their message; anything
// unrecognized is logged and returned as a generic internal error so raw
// storage errors never leak to callers.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, operation string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.NewError(dto.ErrKindValidation, err.Error()))
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, dto.NewError(dto.ErrKindNotFound, err.Error()))
	case errors.Is(err, apperrors.ErrInvalidState):
		logger.Warn("Invalid state transition", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, dto.NewError(dto.ErrKindInvalidState, err.Error()))
	case errors.Is(err, apperrors.ErrOverpayment):
		logger.Warn("Overpayment rejected", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, dto.NewError(dto.ErrKindOverpayment, err.Error()))
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Conflict", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, dto.NewError(dto.ErrKindConflict, err.Error()))
	case errors.Is(err, apperrors.ErrExternalService):
		logger.Error("External service failure", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, dto.NewError(dto.ErrKindExternalService, "Upstream service failed"))
	default:
		logger.Error("Unexpected service error", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.NewError(dto.ErrKindInternal, "Internal server error"))
	}
}

// respondBindError reports a malformed request body or query string.
func respondBindError(c *gin.Context, logger *slog.Logger, err error, operation string) {
	logger.Error("Failed to bind request", slog.String("operation", operation), slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.NewError(dto.ErrKindValidation, "Invalid request format"))
}

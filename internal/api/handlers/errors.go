package handlers

import (
	"context"
	"errors"
	"net/http"

	"pv-simulator/internal/api/models"
	"pv-simulator/internal/model"
	"pv-simulator/internal/weather"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func abortWithError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// errorResponse maps an error to a status and envelope.
func errorResponse(err error) (int, models.ErrorDetail) {
	var ve *model.ValidationError
	var le *model.LengthError
	var pe *weather.PVGISError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, models.ErrorDetail{
			Code:    "INVALID_INPUT",
			Message: err.Error(),
			Details: map[string]interface{}{"field": ve.Field},
		}
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, models.ErrorDetail{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.As(err, &le):
		return http.StatusUnprocessableEntity, models.ErrorDetail{
			Code:    "CONTRACT_VIOLATION",
			Message: err.Error(),
			Details: map[string]interface{}{"series": le.Series, "got": le.Got, "want": le.Want},
		}
	case errors.Is(err, model.ErrContract):
		return http.StatusUnprocessableEntity, models.ErrorDetail{Code: "CONTRACT_VIOLATION", Message: err.Error()}
	case errors.As(err, &pe):
		status := http.StatusBadGateway
		if pe.StatusCode == http.StatusTooManyRequests {
			status = http.StatusTooManyRequests
		}
		return status, models.ErrorDetail{
			Code:    pe.Code,
			Message: pe.Message,
			Details: map[string]interface{}{
				"status_code": pe.StatusCode,
				"retry_after": pe.RetryAfter,
			},
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, models.ErrorDetail{Code: "TIMEOUT", Message: err.Error()}
	case errors.Is(err, context.Canceled):
		return 499, models.ErrorDetail{Code: "CANCELED", Message: err.Error()}
	default:
		return http.StatusInternalServerError, models.ErrorDetail{Code: "SIMULATION_ERROR", Message: err.Error()}
	}
}

func respondError(c *gin.Context, err error) {
	status, detail := errorResponse(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: detail})
}

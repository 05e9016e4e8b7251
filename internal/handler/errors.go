package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/packed-go/ticketing-service/internal/service"
)

// toHTTPError maps service sentinels to HTTP codes. ConcurrencyExhausted is
// 503: the request was valid, the system was too contended to serve it.
func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrPassNotFound),
		errors.Is(err, service.ErrTicketNotFound),
		errors.Is(err, service.ErrDetailNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPassAlreadySold),
		errors.Is(err, service.ErrPassNotAvailable),
		errors.Is(err, service.ErrNoPassesAvailable),
		errors.Is(err, service.ErrAlreadyRedeemed),
		errors.Is(err, service.ErrDetailFullyRedeemed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEventInactive),
		errors.Is(err, service.ErrTicketInactive),
		errors.Is(err, service.ErrDetailInactive),
		errors.Is(err, service.ErrInvalidItem),
		errors.Is(err, service.ErrInsufficientQuantity):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrConcurrencyExhausted):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

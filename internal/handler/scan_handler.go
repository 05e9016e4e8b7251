package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/packed-go/ticketing-service/internal/dto"
	"github.com/packed-go/ticketing-service/internal/service"
)

// ScanHandler serves the scanning devices. Business rejections come back as
// 200 with a structured valid/invalid body so the device can display the
// reason; only transport-level problems produce error statuses.
type ScanHandler struct {
	svc service.ValidationService
}

func NewScanHandler(svc service.ValidationService) *ScanHandler {
	return &ScanHandler{svc: svc}
}

func (h *ScanHandler) RegisterRoutes(staff *echo.Group) {
	staff.POST("/scan/entry", h.ValidateEntry)
	staff.POST("/scan/consumption", h.ValidateConsumption)
}

func (h *ScanHandler) ValidateEntry(c echo.Context) error {
	var req dto.ValidateEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EventID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id is required")
	}

	result, err := h.svc.ValidateEntry(c.Request().Context(), req.Payload, req.EventID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *ScanHandler) ValidateConsumption(c echo.Context) error {
	var req dto.ValidateConsumptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EventID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id is required")
	}

	result, err := h.svc.ValidateConsumption(c.Request().Context(), req.Payload, req.EventID, req.Quantity)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

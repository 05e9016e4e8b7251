package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/packed-go/ticketing-service/internal/dto"
	"github.com/packed-go/ticketing-service/internal/models"
	"github.com/packed-go/ticketing-service/internal/service"
)

type EventHandler struct {
	eventSvc service.EventService
	passSvc  service.PassService
}

func NewEventHandler(eventSvc service.EventService, passSvc service.PassService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc, passSvc: passSvc}
}

func (h *EventHandler) RegisterRoutes(public, staff *echo.Group) {
	public.GET("/events/:id", h.GetEvent)
	public.GET("/events/:id/status", h.GetStatus)

	staff.POST("/events", h.CreateEvent)
	staff.PATCH("/events/:id/active", h.SetActive)
	staff.POST("/events/:id/passes", h.GeneratePasses)
	staff.GET("/events/:id/passes", h.ListPasses)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	event := &models.Event{
		Name:        req.Name,
		Description: req.Description,
		EventDate:   req.EventDate,
		BasePrice:   req.BasePrice,
		Active:      true,
	}
	if err := h.eventSvc.CreateEvent(c.Request().Context(), event); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	event, err := h.eventSvc.GetEvent(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) SetActive(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SetEventActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.eventSvc.SetActive(c.Request().Context(), id, req.Active); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) GetStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	status, err := h.eventSvc.GetStatus(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, status)
}

func (h *EventHandler) GeneratePasses(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.GeneratePassesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Quantity <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}

	passes, err := h.passSvc.GeneratePasses(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.PassResponse, len(passes))
	for i := range passes {
		resp[i] = dto.ToPassResponse(&passes[i])
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *EventHandler) ListPasses(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	availableOnly := c.QueryParam("available") == "true"

	passes, err := h.passSvc.ListEventPasses(c.Request().Context(), id, availableOnly)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.PassResponse, len(passes))
	for i := range passes {
		resp[i] = dto.ToPassResponse(&passes[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/packed-go/ticketing-service/internal/dto"
	"github.com/packed-go/ticketing-service/internal/service"
)

type TicketHandler struct {
	svc service.TicketService
}

func NewTicketHandler(svc service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

func (h *TicketHandler) RegisterRoutes(public *echo.Group) {
	public.POST("/tickets", h.IssueTicket)
	public.GET("/tickets/:id", h.GetTicket)
	public.GET("/tickets/by-code/:code", h.GetByPassCode)
	public.GET("/users/:id/tickets", h.GetUserTickets)
	public.GET("/bundles/:id", h.GetBundle)
}

func (h *TicketHandler) IssueTicket(c echo.Context) error {
	var req dto.IssueTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EventID == 0 || req.UserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id and user_id are required")
	}

	issued, err := h.svc.IssueTicket(c.Request().Context(), req.EventID, req.UserID, req.Consumptions)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, issued)
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.svc.GetTicket(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) GetByPassCode(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}
	ticket, err := h.svc.GetTicketByPassCode(c.Request().Context(), code)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) GetUserTickets(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tickets, err := h.svc.GetUserTickets(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.TicketResponse, len(tickets))
	for i := range tickets {
		resp[i] = dto.ToTicketResponse(&tickets[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *TicketHandler) GetBundle(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	bundle, err := h.svc.GetBundle(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, bundle)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/packed-go/ticketing-service/internal/dto"
	"github.com/packed-go/ticketing-service/internal/service"
)

type PassHandler struct {
	svc service.PassService
}

func NewPassHandler(svc service.PassService) *PassHandler {
	return &PassHandler{svc: svc}
}

func (h *PassHandler) RegisterRoutes(public *echo.Group) {
	public.GET("/passes/:id", h.GetPass)
	public.GET("/passes/by-code/:code", h.GetByCode)
	public.POST("/passes/:id/sell", h.SellPass)
	public.POST("/passes/by-code/:code/sell", h.SellByCode)
	public.GET("/users/:id/passes", h.GetUserPasses)
}

func (h *PassHandler) GetPass(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	pass, err := h.svc.GetPass(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPassResponse(pass))
}

func (h *PassHandler) SellPass(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SellPassRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	pass, err := h.svc.SellPass(c.Request().Context(), id, req.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPassResponse(pass))
}

func (h *PassHandler) GetByCode(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}
	pass, err := h.svc.GetPassByCode(c.Request().Context(), code)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPassResponse(pass))
}

func (h *PassHandler) SellByCode(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}
	var req dto.SellPassRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	pass, err := h.svc.SellPassByCode(c.Request().Context(), code, req.UserID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPassResponse(pass))
}

func (h *PassHandler) GetUserPasses(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	passes, err := h.svc.ListUserPasses(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.PassResponse, len(passes))
	for i := range passes {
		resp[i] = dto.ToPassResponse(&passes[i])
	}
	return c.JSON(http.StatusOK, resp)
}

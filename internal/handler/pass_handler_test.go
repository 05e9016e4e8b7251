package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/packed-go/ticketing-service/internal/dto"
	"github.com/packed-go/ticketing-service/internal/models"
	"github.com/packed-go/ticketing-service/internal/service"
	"github.com/stretchr/testify/assert"
)

// --- Mock PassService ---

type mockPassService struct {
	allocateFn   func(ctx context.Context, eventID uint) (*models.Pass, error)
	generateFn   func(ctx context.Context, eventID uint, quantity int) ([]models.Pass, error)
	sellFn       func(ctx context.Context, passID, userID uint) (*models.Pass, error)
	sellByCodeFn func(ctx context.Context, code string, userID uint) (*models.Pass, error)
	getFn        func(ctx context.Context, id uint) (*models.Pass, error)
	getByCodeFn  func(ctx context.Context, code string) (*models.Pass, error)
	listFn       func(ctx context.Context, eventID uint, availableOnly bool) ([]models.Pass, error)
	listUserFn   func(ctx context.Context, userID uint) ([]models.Pass, error)
}

func (m *mockPassService) AllocatePass(ctx context.Context, eventID uint) (*models.Pass, error) {
	return m.allocateFn(ctx, eventID)
}
func (m *mockPassService) GeneratePasses(ctx context.Context, eventID uint, quantity int) ([]models.Pass, error) {
	return m.generateFn(ctx, eventID, quantity)
}
func (m *mockPassService) SellPass(ctx context.Context, passID, userID uint) (*models.Pass, error) {
	return m.sellFn(ctx, passID, userID)
}
func (m *mockPassService) SellPassByCode(ctx context.Context, code string, userID uint) (*models.Pass, error) {
	return m.sellByCodeFn(ctx, code, userID)
}
func (m *mockPassService) GetPass(ctx context.Context, id uint) (*models.Pass, error) {
	return m.getFn(ctx, id)
}
func (m *mockPassService) GetPassByCode(ctx context.Context, code string) (*models.Pass, error) {
	return m.getByCodeFn(ctx, code)
}
func (m *mockPassService) ListEventPasses(ctx context.Context, eventID uint, availableOnly bool) ([]models.Pass, error) {
	return m.listFn(ctx, eventID, availableOnly)
}
func (m *mockPassService) ListUserPasses(ctx context.Context, userID uint) ([]models.Pass, error) {
	return m.listUserFn(ctx, userID)
}

// --- Tests ---

func TestSellPass_Handler_Success(t *testing.T) {
	userID := uint(7)
	now := time.Now()
	svc := &mockPassService{
		sellFn: func(ctx context.Context, passID, uid uint) (*models.Pass, error) {
			assert.Equal(t, uint(1), passID)
			assert.Equal(t, userID, uid)
			return &models.Pass{
				ID:           passID,
				Code:         "PKG-1-1724800000000-A1B2C3D4",
				EventID:      1,
				Sold:         true,
				SoldToUserID: &uid,
				SoldAt:       &now,
			}, nil
		},
	}

	e := echo.New()
	body := `{"user_id":7}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/passes/1/sell", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	h := NewPassHandler(svc)
	err := h.SellPass(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.PassResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Sold)
	assert.False(t, resp.Available)
	assert.Equal(t, userID, *resp.SoldToUserID)
}

func TestSellPass_Handler_AlreadySold(t *testing.T) {
	svc := &mockPassService{
		sellFn: func(ctx context.Context, passID, userID uint) (*models.Pass, error) {
			return nil, service.ErrPassAlreadySold
		},
	}

	e := echo.New()
	body := `{"user_id":7}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/passes/1/sell", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	h := NewPassHandler(svc)
	err := h.SellPass(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestSellPass_Handler_EmptyUserID(t *testing.T) {
	e := echo.New()
	body := `{"user_id":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/passes/1/sell", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	h := NewPassHandler(nil)
	err := h.SellPass(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestSellPass_Handler_InvalidID(t *testing.T) {
	e := echo.New()
	body := `{"user_id":7}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/passes/abc/sell", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	h := NewPassHandler(nil)
	err := h.SellPass(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestSellPass_Handler_ConcurrencyExhausted(t *testing.T) {
	svc := &mockPassService{
		sellFn: func(ctx context.Context, passID, userID uint) (*models.Pass, error) {
			return nil, service.ErrConcurrencyExhausted
		},
	}

	e := echo.New()
	body := `{"user_id":7}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/passes/1/sell", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	h := NewPassHandler(svc)
	err := h.SellPass(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, he.Code)
}

func TestGetPass_Handler_Success(t *testing.T) {
	svc := &mockPassService{
		getFn: func(ctx context.Context, id uint) (*models.Pass, error) {
			return &models.Pass{ID: id, Code: "PKG-1-1724800000000-A1B2C3D4", EventID: 1, Active: true, Available: true}, nil
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/passes/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	h := NewPassHandler(svc)
	err := h.GetPass(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.PassResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PKG-1-1724800000000-A1B2C3D4", resp.Code)
	assert.True(t, resp.Available)
}

func TestSellByCode_Handler_Success(t *testing.T) {
	svc := &mockPassService{
		sellByCodeFn: func(ctx context.Context, code string, userID uint) (*models.Pass, error) {
			assert.Equal(t, "PKG-1-1724800000000-A1B2C3D4", code)
			return &models.Pass{ID: 1, Code: code, EventID: 1, Sold: true, SoldToUserID: &userID}, nil
		},
	}

	e := echo.New()
	body := `{"user_id":7}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/passes/by-code/PKG-1-1724800000000-A1B2C3D4/sell", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("code")
	c.SetParamValues("PKG-1-1724800000000-A1B2C3D4")

	h := NewPassHandler(svc)
	err := h.SellByCode(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.PassResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Sold)
}

func TestGetPass_Handler_NotFound(t *testing.T) {
	svc := &mockPassService{
		getFn: func(ctx context.Context, id uint) (*models.Pass, error) {
			return nil, service.ErrPassNotFound
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/passes/999", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("999")

	h := NewPassHandler(svc)
	err := h.GetPass(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

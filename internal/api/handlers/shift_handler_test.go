package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Starlight373/Car-wash/internal/api/handlers"
	"github.com/Starlight373/Car-wash/internal/api/middleware"
	"github.com/Starlight373/Car-wash/internal/models"
	"github.com/Starlight373/Car-wash/internal/services"
)

func newShiftTestRouter(mockSvc *MockShiftService, kasirID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewShiftHandler(mockSvc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, kasirID)
		c.Set(middleware.ContextKeyRole, string(models.RoleKasir))
	})
	r.POST("/api/shifts/open", handler.Open)
	r.POST("/api/shifts/close", handler.Close)
	r.GET("/api/shifts/current/:kasir_id", handler.Current)
	r.GET("/api/shifts", handler.List)
	return r
}

func TestShiftHandler_Open_Success(t *testing.T) {
	mockSvc := new(MockShiftService)
	r := newShiftTestRouter(mockSvc, "kasir-1")

	expected := &models.Shift{
		KasirID:        "kasir-1",
		KasirName:      "Budi Santoso",
		OpeningBalance: 100000,
		Status:         models.ShiftStatusOpen,
		OpenedAt:       time.Now().UTC(),
	}
	mockSvc.On("Open", mock.Anything, "kasir-1", 100000.0).Return(expected, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/shifts/open", strings.NewReader(`{"opening_balance": 100000}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody models.Shift
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "open", respBody.Status)
	assert.Equal(t, 100000.0, respBody.OpeningBalance)
	mockSvc.AssertExpectations(t)
}

func TestShiftHandler_Open_AlreadyOpen(t *testing.T) {
	mockSvc := new(MockShiftService)
	r := newShiftTestRouter(mockSvc, "kasir-1")

	mockSvc.On("Open", mock.Anything, "kasir-1", 100000.0).Return(nil, services.ErrShiftAlreadyOpen)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/shifts/open", strings.NewReader(`{"opening_balance": 100000}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "open shift")
	mockSvc.AssertExpectations(t)
}

func TestShiftHandler_Open_ForNamedKasir(t *testing.T) {
	mockSvc := new(MockShiftService)
	r := newShiftTestRouter(mockSvc, "kasir-1")

	expected := &models.Shift{
		KasirID:        "kasir-2",
		KasirName:      "Sari Dewi",
		OpeningBalance: 100000,
		Status:         models.ShiftStatusOpen,
		OpenedAt:       time.Now().UTC(),
	}
	mockSvc.On("Open", mock.Anything, "kasir-2", 100000.0).Return(expected, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/shifts/open", strings.NewReader(`{"kasir_id": "kasir-2", "opening_balance": 100000}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody models.Shift
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "kasir-2", respBody.KasirID)
	mockSvc.AssertExpectations(t)
}

func TestShiftHandler_Open_UnknownKasir(t *testing.T) {
	mockSvc := new(MockShiftService)
	r := newShiftTestRouter(mockSvc, "kasir-1")

	mockSvc.On("Open", mock.Anything, "kasir-gone", 100000.0).Return(nil, mongo.ErrNoDocuments)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/shifts/open", strings.NewReader(`{"kasir_id": "kasir-gone", "opening_balance": 100000}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Kasir not found")
	mockSvc.AssertExpectations(t)
}

func TestShiftHandler_Close_Success(t *testing.T) {
	mockSvc := new(MockShiftService)
	r := newShiftTestRouter(mockSvc, "kasir-1")

	variance := -10000.0
	expected := &models.Shift{
		KasirID:  "kasir-1",
		Status:   models.ShiftStatusClosed,
		Variance: &variance,
	}
	mockSvc.On("Close", mock.Anything, "shift-1", 140000.0, "short").Return(expected, nil)

	w := httptest.NewRecorder()
	body := `{"shift_id": "shift-1", "closing_balance": 140000, "notes": "short"}`
	req, _ := http.NewRequest("POST", "/api/shifts/close", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody models.Shift
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.NotNil(t, respBody.Variance)
	assert.Equal(t, -10000.0, *respBody.Variance)
	mockSvc.AssertExpectations(t)
}

func TestShiftHandler_Close_NotFoundAndAlreadyClosed(t *testing.T) {
	mockSvc := new(MockShiftService)
	r := newShiftTestRouter(mockSvc, "kasir-1")

	mockSvc.On("Close", mock.Anything, "missing", 0.0, "").Return(nil, mongo.ErrNoDocuments)
	mockSvc.On("Close", mock.Anything, "closed", 0.0, "").Return(nil, services.ErrShiftClosed)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/shifts/close", strings.NewReader(`{"shift_id": "missing"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/shifts/close", strings.NewReader(`{"shift_id": "closed"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestShiftHandler_Current_NoneOpen(t *testing.T) {
	mockSvc := new(MockShiftService)
	r := newShiftTestRouter(mockSvc, "kasir-1")

	// nil shift, nil error: 200 with null body.
	mockSvc.On("Current", mock.Anything, "kasir-1").Return(nil, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/shifts/current/kasir-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))
	mockSvc.AssertExpectations(t)
}

func TestShiftHandler_List(t *testing.T) {
	mockSvc := new(MockShiftService)
	r := newShiftTestRouter(mockSvc, "kasir-1")

	mockSvc.On("List", mock.Anything).Return([]models.Shift{{KasirID: "kasir-1"}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/shifts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody []models.Shift
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Len(t, respBody, 1)
	mockSvc.AssertExpectations(t)
}

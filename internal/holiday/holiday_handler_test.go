package holiday_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leavedesk/internal/cacheview"
	"leavedesk/internal/holiday"
	holidayerrors "leavedesk/internal/holiday/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeHolidayService struct {
	CreateFn func(ctx context.Context, req holiday.CreateHolidayRequest) (cacheview.HolidayView, error)
	GetAllFn func(ctx context.Context) ([]cacheview.HolidayView, error)
	UpdateFn func(ctx context.Context, id string, req holiday.UpdateHolidayRequest) (cacheview.HolidayView, error)
	DeleteFn func(ctx context.Context, id string) error
}

func (f *fakeHolidayService) Create(ctx context.Context, req holiday.CreateHolidayRequest) (cacheview.HolidayView, error) {
	return f.CreateFn(ctx, req)
}
func (f *fakeHolidayService) GetAll(ctx context.Context) ([]cacheview.HolidayView, error) {
	return f.GetAllFn(ctx)
}
func (f *fakeHolidayService) Update(ctx context.Context, id string, req holiday.UpdateHolidayRequest) (cacheview.HolidayView, error) {
	return f.UpdateFn(ctx, id, req)
}
func (f *fakeHolidayService) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}

func TestHolidayHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success", func(t *testing.T) {
		svc := &fakeHolidayService{
			CreateFn: func(ctx context.Context, req holiday.CreateHolidayRequest) (cacheview.HolidayView, error) {
				return cacheview.HolidayView{ID: uuid.NewString(), Name: req.Name, Date: req.Date}, nil
			},
		}

		h := holiday.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"name":"Harvest","date":"2026-09-14"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/holidays", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"success":true`)
	})

	t.Run("missing fields", func(t *testing.T) {
		h := holiday.NewHandler(&fakeHolidayService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPost, "/holidays", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)
	})

	t.Run("duplicate date maps to conflict", func(t *testing.T) {
		svc := &fakeHolidayService{
			CreateFn: func(ctx context.Context, req holiday.CreateHolidayRequest) (cacheview.HolidayView, error) {
				return cacheview.HolidayView{}, holidayerrors.ErrDuplicateDate
			},
		}

		h := holiday.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"name":"Harvest","date":"2026-09-14"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/holidays", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHolidayHandler_GetAll(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeHolidayService{
		GetAllFn: func(ctx context.Context) ([]cacheview.HolidayView, error) {
			return []cacheview.HolidayView{
				{ID: "h1", Name: "Founders Day", Date: "2026-03-02"},
			}, nil
		},
	}

	h := holiday.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/holidays", nil)

	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Founders Day")
}

func TestHolidayHandler_Delete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("not found", func(t *testing.T) {
		svc := &fakeHolidayService{
			DeleteFn: func(ctx context.Context, id string) error {
				return holidayerrors.ErrHolidayNotFound
			},
		}

		h := holiday.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/holidays/h1", nil)
		c.Params = gin.Params{{Key: "id", Value: "h1"}}

		h.Delete(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

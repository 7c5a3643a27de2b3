package leave_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leavedesk/internal/cacheview"
	"leavedesk/internal/leave"
	leaveerrors "leavedesk/internal/leave/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeLeaveService struct {
	ApplyFn   func(ctx context.Context, applicantID string, req leave.ApplyLeaveRequest) (cacheview.LeaveView, error)
	GetAllFn  func(ctx context.Context) ([]cacheview.LeaveView, error)
	GetByIDFn func(ctx context.Context, id string) (cacheview.LeaveView, error)
	ApproveFn func(ctx context.Context, actorID, actorRole, id string) (cacheview.LeaveView, error)
	RejectFn  func(ctx context.Context, actorID, actorRole, id, rejectReason string) (cacheview.LeaveView, error)
	DeleteFn  func(ctx context.Context, actorID, actorRole, id string) error
}

func (f *fakeLeaveService) Apply(ctx context.Context, applicantID string, req leave.ApplyLeaveRequest) (cacheview.LeaveView, error) {
	return f.ApplyFn(ctx, applicantID, req)
}
func (f *fakeLeaveService) GetAll(ctx context.Context) ([]cacheview.LeaveView, error) {
	return f.GetAllFn(ctx)
}
func (f *fakeLeaveService) GetByID(ctx context.Context, id string) (cacheview.LeaveView, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeLeaveService) Approve(ctx context.Context, actorID, actorRole, id string) (cacheview.LeaveView, error) {
	return f.ApproveFn(ctx, actorID, actorRole, id)
}
func (f *fakeLeaveService) Reject(ctx context.Context, actorID, actorRole, id, rejectReason string) (cacheview.LeaveView, error) {
	return f.RejectFn(ctx, actorID, actorRole, id, rejectReason)
}
func (f *fakeLeaveService) Delete(ctx context.Context, actorID, actorRole, id string) error {
	return f.DeleteFn(ctx, actorID, actorRole, id)
}

func TestLeaveHandler_Apply(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success passes the authenticated applicant", func(t *testing.T) {
		var gotApplicant string
		svc := &fakeLeaveService{
			ApplyFn: func(ctx context.Context, applicantID string, req leave.ApplyLeaveRequest) (cacheview.LeaveView, error) {
				gotApplicant = applicantID
				return cacheview.LeaveView{ID: "l1", EmployeeID: applicantID, Status: cacheview.LeavePending}, nil
			},
		}

		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"policy_name":"Casual Leave","start_date":"2026-08-03","start_absent_type":"FULL_DAY","reason":"errand"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("employee_id", "emp-1")

		h.Apply(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "emp-1", gotApplicant)
	})

	t.Run("missing start date", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"policy_name":"Casual Leave","start_absent_type":"FULL_DAY"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Apply(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("insufficient balance maps to conflict", func(t *testing.T) {
		svc := &fakeLeaveService{
			ApplyFn: func(ctx context.Context, applicantID string, req leave.ApplyLeaveRequest) (cacheview.LeaveView, error) {
				return cacheview.LeaveView{}, leaveerrors.ErrInsufficientBalance
			},
		}

		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		body := `{"policy_name":"Casual Leave","start_date":"2026-08-03","start_absent_type":"FULL_DAY"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("employee_id", "emp-1")

		h.Apply(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestLeaveHandler_Approve(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("passes actor and role through", func(t *testing.T) {
		var gotActor, gotRole, gotID string
		svc := &fakeLeaveService{
			ApproveFn: func(ctx context.Context, actorID, actorRole, id string) (cacheview.LeaveView, error) {
				gotActor, gotRole, gotID = actorID, actorRole, id
				return cacheview.LeaveView{ID: id, Status: cacheview.LeaveApproved}, nil
			},
		}

		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPatch, "/leaves/l1/approve", nil)
		c.Params = gin.Params{{Key: "id", Value: "l1"}}
		c.Set("employee_id", "mgr-1")
		c.Set("role", cacheview.RoleReportManager)

		h.Approve(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "mgr-1", gotActor)
		assert.Equal(t, cacheview.RoleReportManager, gotRole)
		assert.Equal(t, "l1", gotID)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		svc := &fakeLeaveService{
			ApproveFn: func(ctx context.Context, actorID, actorRole, id string) (cacheview.LeaveView, error) {
				return cacheview.LeaveView{}, leaveerrors.ErrNotActionedByYou
			},
		}

		h := leave.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPatch, "/leaves/l1/approve", nil)
		c.Params = gin.Params{{Key: "id", Value: "l1"}}
		c.Set("employee_id", "emp-9")
		c.Set("role", cacheview.RoleMember)

		h.Approve(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestLeaveHandler_Reject(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("reason is required by binding", func(t *testing.T) {
		h := leave.NewHandler(&fakeLeaveService{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		c.Request = httptest.NewRequest(http.MethodPatch, "/leaves/l1/reject", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: "l1"}}
		c.Set("employee_id", "mgr-1")
		c.Set("role", cacheview.RoleReportManager)

		h.Reject(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

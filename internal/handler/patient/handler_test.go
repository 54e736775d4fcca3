package patient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/triage-api/internal/middleware"
	"github.com/jwalitptl/triage-api/internal/model"
	apperrors "github.com/jwalitptl/triage-api/pkg/errors"
)

type mockPatientService struct {
	mock.Mock
}

func (m *mockPatientService) Intake(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *mockPatientService) Worklist(ctx context.Context, category string) ([]*model.Patient, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Patient), args.Error(1)
}

func (m *mockPatientService) Get(ctx context.Context, id int64) (*model.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *mockPatientService) GetByPatientID(ctx context.Context, patientID string) (*model.Patient, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *mockPatientService) Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *mockPatientService) Stats(ctx context.Context) (model.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Stats), args.Error(1)
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup() (*gin.Engine, *mockPatientService) {
	gin.SetMode(gin.TestMode)
	svc := new(mockPatientService)
	r := gin.New()
	r.Use(middleware.ErrorHandler(), middleware.Validation(middleware.DefaultValidationConfig()))
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func do(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestCreatePatient(t *testing.T) {
	r, svc := setup()
	svc.On("Intake", mock.Anything, mock.MatchedBy(func(req *model.CreatePatientRequest) bool {
		return req.RespiratoryRate != nil && *req.RespiratoryRate == 35 &&
			req.Consciousness != nil && *req.Consciousness == "pain"
	})).Return(&model.Patient{
		ID:             7,
		PatientID:      "P1709294400",
		TriageCategory: model.CategoryImmediate,
		TriageScore:    100,
		Priority:       80,
	}, nil)

	w, env := do(r, http.MethodPost, "/api/v1/patients",
		`{"respiratory_rate":35,"pulse":130,"systolic_bp":85,"consciousness":"pain","can_walk":false}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", env.Status)

	var got model.IntakeResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, model.IntakeResponse{
		ID:        7,
		PatientID: "P1709294400",
		Category:  model.CategoryImmediate,
		Score:     100,
		Priority:  80,
	}, got)
	svc.AssertExpectations(t)
}

func TestCreatePatient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"malformed json", `{"pulse":`, nil, http.StatusBadRequest},
		{"negative vital", `{"pulse":-5}`, nil, http.StatusBadRequest},
		{"blank identity", `{"patient_id":"  "}`,
			apperrors.BadRequest("patient_id must not be blank", apperrors.ErrMissingIdentity), http.StatusBadRequest},
		{"duplicate", `{"patient_id":"P1"}`, apperrors.Conflict("patient P1 already exists", nil), http.StatusConflict},
		{"storage failure", `{}`, apperrors.Internal(errors.New("db down")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := setup()
			if tt.serviceErr != nil {
				svc.On("Intake", mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			w, env := do(r, http.MethodPost, "/api/v1/patients", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "error", env.Status)
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "Intake", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestListPatients(t *testing.T) {
	r, svc := setup()
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.On("Worklist", mock.Anything, "immediate").Return([]*model.Patient{
		{ID: 2, PatientID: "B", Priority: 80, Timestamp: t0, TriageCategory: model.CategoryImmediate},
		{ID: 1, PatientID: "A", Priority: 61, Timestamp: t0, TriageCategory: model.CategoryImmediate},
	}, nil)
	svc.On("Worklist", mock.Anything, "bogus").Return([]*model.Patient{}, nil)

	w, env := do(r, http.MethodGet, "/api/v1/patients?category=immediate", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []model.Patient
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].PatientID)
	assert.Equal(t, "A", got[1].PatientID)

	w, env = do(r, http.MethodGet, "/api/v1/patients?category=bogus", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestGetPatient(t *testing.T) {
	r, svc := setup()
	svc.On("Get", mock.Anything, int64(3)).Return(&model.Patient{ID: 3, PatientID: "P3"}, nil)
	svc.On("Get", mock.Anything, int64(4)).Return(nil, apperrors.NotFound("patient", nil))

	w, _ := do(r, http.MethodGet, "/api/v1/patients/3", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := do(r, http.MethodGet, "/api/v1/patients/4", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "patient not found", env.Message)

	w, _ = do(r, http.MethodGet, "/api/v1/patients/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "Get", 2)
}

func TestGetPatientByPatientID(t *testing.T) {
	r, svc := setup()
	svc.On("GetByPatientID", mock.Anything, "P1709294400").Return(&model.Patient{ID: 7, PatientID: "P1709294400"}, nil)
	svc.On("GetByPatientID", mock.Anything, "X-1").Return(nil, apperrors.NotFound("patient", nil))

	w, env := do(r, http.MethodGet, "/api/v1/patients/by-patient-id/P1709294400", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got model.Patient
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, int64(7), got.ID)

	w, _ = do(r, http.MethodGet, "/api/v1/patients/by-patient-id/X-1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// numeric ids still reach the primary-key route
	svc.On("Get", mock.Anything, int64(7)).Return(&model.Patient{ID: 7}, nil)
	w, _ = do(r, http.MethodGet, "/api/v1/patients/7", "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUpdatePatient(t *testing.T) {
	r, svc := setup()
	outcome := model.OutcomeEvacuated
	svc.On("Update", mock.Anything, int64(5), mock.MatchedBy(func(req *model.UpdatePatientRequest) bool {
		return req.Outcome != nil && *req.Outcome == "evacuated" && req.TreatmentStarted == nil
	})).Return(&model.Patient{ID: 5, Outcome: &outcome}, nil)

	w, _ := do(r, http.MethodPatch, "/api/v1/patients/5", `{"outcome":"evacuated"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := do(r, http.MethodPatch, "/api/v1/patients/5", `{"outcome":"recovered"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", env.Message)
	svc.AssertNumberOfCalls(t, "Update", 1)
}

func TestStats(t *testing.T) {
	r, svc := setup()
	svc.On("Stats", mock.Anything).Return(model.Stats{Total: 3, Immediate: 1, Delayed: 1, Evacuated: 1}, nil)

	w, env := do(r, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got model.Stats
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, got.Evacuated)
}

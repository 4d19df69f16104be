package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/confreg-server/internal/model"
	"github.com/dtroode/confreg-server/internal/testutil"
)

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Submit(ctx context.Context, params model.SubmitParams) (model.Registration, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Registration), args.Error(1)
}

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Stats(ctx context.Context) (model.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Stats), args.Error(1)
}

func (m *MockQueryService) List(ctx context.Context, rawType, rawSort string) ([]model.Registration, error) {
	args := m.Called(ctx, rawType, rawSort)
	return args.Get(0).([]model.Registration), args.Error(1)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRegistration_Register(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		submitErr   error
		wantStatus  int
		wantSuccess bool
		wantMessage string
		wantCall    bool
	}{
		{
			name:        "created",
			body:        `{"name":"Al","email":"a@b.com","registration_type":"student"}`,
			wantStatus:  http.StatusCreated,
			wantSuccess: true,
			wantMessage: "Registration successful",
			wantCall:    true,
		},
		{
			name:        "validation error",
			body:        `{"name":"Bo","email":"bo@x.com","registration_type":"professional"}`,
			submitErr:   model.NewErrMissingCompany(),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Company is required for professional registration",
			wantCall:    true,
		},
		{
			name:        "store failure",
			body:        `{"name":"Al","email":"a@b.com","registration_type":"student"}`,
			submitErr:   model.StoreError("failed to insert registration", errors.New("down")),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Server error while registering user",
			wantCall:    true,
		},
		{
			name:        "malformed json",
			body:        `{"name":`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request body",
		},
		{
			name:        "wrong field type",
			body:        `{"name":42}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockRegistrationService{}
			if tt.wantCall {
				svc.On("Submit", mock.Anything, mock.AnythingOfType("model.SubmitParams")).
					Return(model.Registration{ID: uuid.New()}, tt.submitErr).Once()
			}
			h := NewRegistration(svc, testutil.MakeNoopLogger())

			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Register(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := decodeEnvelope(t, rec)
			assert.Equal(t, tt.wantSuccess, body["success"])
			assert.Equal(t, tt.wantMessage, body["message"])
			svc.AssertExpectations(t)
		})
	}
}

func TestRegistration_Register_PassesFields(t *testing.T) {
	svc := &MockRegistrationService{}
	svc.On("Submit", mock.Anything, model.SubmitParams{
		Name: "Bo", Email: "bo@x.com", RegistrationType: "professional", Company: "Acme", Phone: "+1 555",
	}).Return(model.Registration{ID: uuid.New()}, nil).Once()
	h := NewRegistration(svc, testutil.MakeNoopLogger())

	body := `{"name":"Bo","email":"bo@x.com","registration_type":"professional","company":"Acme","phone":"+1 555"}`
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestAdmin_Stats(t *testing.T) {
	svc := &MockQueryService{}
	svc.On("Stats", mock.Anything).Return(model.Stats{Total: 3, Students: 2, Professionals: 1}, nil).Once()
	h := NewAdmin(svc, testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"total":3,"students":2,"professionals":1}}`, rec.Body.String())
}

func TestAdmin_Stats_Failure(t *testing.T) {
	svc := &MockQueryService{}
	svc.On("Stats", mock.Anything).Return(model.Stats{}, model.StoreError("count", errors.New("x"))).Once()
	h := NewAdmin(svc, testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Failed to fetch dashboard statistics"}`, rec.Body.String())
}

func TestAdmin_Registrations(t *testing.T) {
	id := uuid.MustParse("0b6f3f8e-3f4e-4c53-9a39-7a2b8c1d2e3f")
	company := "Acme"
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	svc := &MockQueryService{}
	svc.On("List", mock.Anything, "professional", "asc").Return([]model.Registration{{
		ID:               id,
		Name:             "Bo",
		Email:            "bo@x.com",
		RegistrationType: model.RegistrationTypeProfessional,
		Company:          &company,
		CreatedAt:        created,
	}}, nil).Once()
	h := NewAdmin(svc, testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	h.Registrations(rec, httptest.NewRequest(http.MethodGet, "/admin/registrations?type=professional&sort=asc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[{
		"id":"0b6f3f8e-3f4e-4c53-9a39-7a2b8c1d2e3f",
		"name":"Bo",
		"email":"bo@x.com",
		"registration_type":"professional",
		"company":"Acme",
		"created_at":"2025-01-02T03:04:05Z"
	}]}`, rec.Body.String())
}

func TestAdmin_Registrations_EmptyIsArray(t *testing.T) {
	svc := &MockQueryService{}
	svc.On("List", mock.Anything, "", "").Return([]model.Registration(nil), nil).Once()
	h := NewAdmin(svc, testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	h.Registrations(rec, httptest.NewRequest(http.MethodGet, "/admin/registrations", nil))

	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}

func TestAdmin_Registrations_Failure(t *testing.T) {
	svc := &MockQueryService{}
	svc.On("List", mock.Anything, "all", "desc").Return([]model.Registration(nil), errors.New("boom")).Once()
	h := NewAdmin(svc, testutil.MakeNoopLogger())

	rec := httptest.NewRecorder()
	h.Registrations(rec, httptest.NewRequest(http.MethodGet, "/admin/registrations?type=all&sort=desc", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Failed to fetch registrations"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Conference Registration API is running"}`, rec.Body.String())
}

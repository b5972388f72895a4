package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediseen/teleconsult-api/internal/middleware"
	"github.com/mediseen/teleconsult-api/internal/model"
	"github.com/mediseen/teleconsult-api/internal/service/booking"
	"github.com/mediseen/teleconsult-api/internal/service/slot"
	"github.com/mediseen/teleconsult-api/pkg/logger"
)

type stubResolver struct {
	detail *model.DoctorDetail
}

func (r *stubResolver) Resolve(ctx context.Context, doctorID uuid.UUID) (*model.DoctorDetail, error) {
	return r.detail, nil
}

type stubProcessor struct {
	outcome model.PaymentOutcome
}

func (p *stubProcessor) Charge(ctx context.Context, attempt *model.PaymentAttempt) (model.PaymentOutcome, error) {
	return p.outcome, nil
}

type stubPersister struct{}

func (p *stubPersister) CreateFromDraft(ctx context.Context, patientID uuid.UUID, draft model.BookingDraft, fee float64) (*model.Appointment, error) {
	return &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		PatientID: patientID,
		DoctorID:  *draft.DoctorID,
		Date:      draft.Date,
		TimeSlot:  draft.TimeSlot,
		Fee:       fee,
	}, nil
}

type apiFixture struct {
	engine    *gin.Engine
	patientID uuid.UUID
	doctorID  uuid.UUID
}

func newAPIFixture(t *testing.T, outcome model.PaymentOutcome) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	doctorID := uuid.New()
	patientID := uuid.New()
	log := logger.NewLogger(&logger.Config{Output: io.Discard})

	catalog := slot.NewCatalog([]string{"03:00 PM"})
	manager := booking.NewManager(
		&stubResolver{detail: &model.DoctorDetail{
			DoctorProfile:   model.DoctorProfile{Base: model.Base{ID: doctorID}, Name: "Dr. Mensah"},
			ConsultationFee: 90,
		}},
		catalog,
		&stubProcessor{outcome: outcome},
		&stubPersister{},
		booking.ManagerConfig{SessionTTL: time.Minute, FetchTimeout: time.Second},
		log,
		nil,
	)

	engine := gin.New()
	group := engine.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		c.Set(middleware.ContextPatientID, patientID)
		c.Next()
	})
	NewHandler(manager, catalog).RegisterRoutes(group)

	return &apiFixture{engine: engine, patientID: patientID, doctorID: doctorID}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) startSession(t *testing.T) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/bookings", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data booking.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID.String()
}

func TestBookingEndpointsFullFlow(t *testing.T) {
	f := newAPIFixture(t, model.PaymentOutcomeSucceeded)
	id := f.startSession(t)

	w := f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/doctor",
		gin.H{"doctor_id": f.doctorID})
	require.Equal(t, http.StatusOK, w.Code)

	require.Eventually(t, func() bool {
		w := f.do(t, http.MethodGet, "/api/v1/bookings/"+id, nil)
		var resp struct {
			Data booking.Snapshot `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			return false
		}
		return resp.Data.Doctor != nil
	}, time.Second, 10*time.Millisecond)

	w = f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/schedule",
		gin.H{"date": "2026-09-14", "time_slot": "10:30 AM"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/intake",
		gin.H{"symptoms": "migraine with aura"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/payment/confirm", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			Appointment model.Appointment `json:"appointment"`
			Session     booking.Snapshot  `json:"session"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, f.patientID, resp.Data.Appointment.PatientID)
	assert.InDelta(t, 90.0, resp.Data.Appointment.Fee, 0.001)
	assert.Equal(t, booking.StateCompleted, resp.Data.Session.State)
	assert.Equal(t, model.ProgressComplete, resp.Data.Session.Progress)
}

func TestBookingEndpointsStatusMapping(t *testing.T) {
	f := newAPIFixture(t, model.PaymentOutcomeFailed)
	id := f.startSession(t)

	// Payment before reaching that step
	w := f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/payment/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/doctor", gin.H{"doctor_id": f.doctorID})
	require.Equal(t, http.StatusOK, w.Code)

	// Unavailable slot
	w = f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/schedule",
		gin.H{"date": "2026-09-14", "time_slot": "03:00 PM"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Malformed date
	w = f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/schedule",
		gin.H{"date": "14-09-2026", "time_slot": "09:00 AM"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/schedule",
		gin.H{"date": "2026-09-14", "time_slot": "09:00 AM"})
	require.Equal(t, http.StatusOK, w.Code)

	// Blank intake
	w = f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/intake", gin.H{"symptoms": "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/intake", gin.H{"symptoms": "chest pain"})
	require.Equal(t, http.StatusOK, w.Code)

	// Declined payment
	w = f.do(t, http.MethodPost, "/api/v1/bookings/"+id+"/payment/confirm", nil)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	// Unknown session
	w = f.do(t, http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSlotsPartitionsByPeriod(t *testing.T) {
	f := newAPIFixture(t, model.PaymentOutcomeSucceeded)

	w := f.do(t, http.MethodGet, "/api/v1/slots", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data slot.Day `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Morning, 6)
	assert.Len(t, resp.Data.Afternoon, 6)

	for _, s := range resp.Data.Afternoon {
		if s.Label == "03:00 PM" {
			assert.False(t, s.Available)
		}
	}
}

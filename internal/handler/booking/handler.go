package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediseen/teleconsult-api/internal/middleware"
	"github.com/mediseen/teleconsult-api/internal/model"
	"github.com/mediseen/teleconsult-api/internal/service/booking"
	"github.com/mediseen/teleconsult-api/internal/service/slot"
	"github.com/mediseen/teleconsult-api/pkg/httputil"
)

type Handler struct {
	manager *booking.Manager
	catalog slot.Catalog
}

func NewHandler(manager *booking.Manager, catalog slot.Catalog) *Handler {
	return &Handler{manager: manager, catalog: catalog}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/slots", h.ListSlots)

	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.Start)
		bookings.GET("/:id", h.GetSnapshot)
		bookings.DELETE("/:id", h.Discard)
		bookings.POST("/:id/doctor", h.SelectDoctor)
		bookings.POST("/:id/schedule", h.SelectSchedule)
		bookings.POST("/:id/intake", h.SubmitIntake)
		bookings.POST("/:id/payment/confirm", h.ConfirmPayment)
		bookings.POST("/:id/payment/cancel", h.CancelPayment)
	}
}

type selectDoctorRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
}

type selectScheduleRequest struct {
	Date     string `json:"date" binding:"required"`
	TimeSlot string `json:"time_slot" binding:"required"`
}

func (h *Handler) ListSlots(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.catalog.Slots())
}

func (h *Handler) Start(c *gin.Context) {
	wf, err := h.manager.Start(middleware.PatientID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httputil.Response{Success: true, Data: wf.Snapshot()})
}

func (h *Handler) GetSnapshot(c *gin.Context) {
	wf, ok := h.session(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, wf.Snapshot())
}

func (h *Handler) Discard(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}
	if err := h.manager.Discard(sessionID, middleware.PatientID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SelectDoctor(c *gin.Context) {
	wf, ok := h.session(c)
	if !ok {
		return
	}

	var req selectDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := wf.SelectDoctor(req.DoctorID); err != nil {
		h.respondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, wf.Snapshot())
}

func (h *Handler) SelectSchedule(c *gin.Context) {
	wf, ok := h.session(c)
	if !ok {
		return
	}

	var req selectScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := wf.SelectSchedule(req.Date, req.TimeSlot); err != nil {
		h.respondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, wf.Snapshot())
}

func (h *Handler) SubmitIntake(c *gin.Context) {
	wf, ok := h.session(c)
	if !ok {
		return
	}

	var intake model.Intake
	if err := c.ShouldBindJSON(&intake); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := wf.SubmitIntake(intake); err != nil {
		h.respondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, wf.Snapshot())
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	wf, ok := h.session(c)
	if !ok {
		return
	}

	apt, err := wf.ConfirmPayment(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.manager.RecordCompleted()
	c.JSON(http.StatusCreated, httputil.Response{Success: true, Data: gin.H{
		"appointment": apt,
		"session":     wf.Snapshot(),
	}})
}

func (h *Handler) CancelPayment(c *gin.Context) {
	wf, ok := h.session(c)
	if !ok {
		return
	}

	if err := wf.CancelPayment(); err != nil {
		h.respondError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, wf.Snapshot())
}

func (h *Handler) session(c *gin.Context) (*booking.Workflow, bool) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return nil, false
	}

	wf, err := h.manager.Get(sessionID, middleware.PatientID(c))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return wf, true
}

// respondError maps workflow sentinels onto HTTP statuses. Validation
// failures are 422 so the client can distinguish them from malformed JSON.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, booking.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, booking.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, booking.ErrSessionForbidden):
		status = http.StatusForbidden
	case errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrPaymentInFlight),
		errors.Is(err, booking.ErrPaymentInterrupted):
		status = http.StatusConflict
	case errors.Is(err, booking.ErrNoDoctor),
		errors.Is(err, booking.ErrIncompleteSchedule),
		errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrSlotUnavailable),
		errors.Is(err, booking.ErrEmptyIntake):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrDoctorUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, booking.ErrPaymentDeclined):
		status = http.StatusPaymentRequired
	case errors.Is(err, booking.ErrPaymentFailed):
		status = http.StatusBadGateway
	case errors.Is(err, booking.ErrPersistenceFailed):
		status = http.StatusInternalServerError
	}

	c.JSON(status, httputil.Response{
		Success: false,
		Error:   &httputil.Error{Code: status, Message: err.Error()},
	})
}

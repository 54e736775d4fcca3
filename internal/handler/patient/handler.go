package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/triage-api/internal/handler"
	"github.com/jwalitptl/triage-api/internal/model"
	patientsvc "github.com/jwalitptl/triage-api/internal/service/patient"
	"github.com/jwalitptl/triage-api/pkg/httputil"
)

type Handler struct {
	service patientsvc.PatientService
}

func NewHandler(service patientsvc.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.GET("/by-patient-id/:patient_id", h.GetPatientByPatientID)
		patients.PATCH("/:id", h.UpdatePatient)
	}
	r.GET("/stats", h.Stats)
}

// CreatePatient triages a new casualty and returns its category and priority.
func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Intake(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, model.IntakeResponse{
		ID:        p.ID,
		PatientID: p.PatientID,
		Category:  p.TriageCategory,
		Score:     p.TriageScore,
		Priority:  p.Priority,
	})
}

// ListPatients returns the active worklist, optionally narrowed by ?category=.
func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.Worklist(c.Request.Context(), c.Query("category"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

// GetPatientByPatientID resolves the intake identifier, e.g. P1709294400.
func (h *Handler) GetPatientByPatientID(c *gin.Context) {
	p, err := h.service.GetByPatientID(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParseID(c)
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, stats)
}

package httptransport

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	"surfaceflow/internal/entity"
	"surfaceflow/internal/registry"
	"surfaceflow/internal/service"
)

type triggerDTO struct {
	Module string         `json:"module"`
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

type automationResp struct {
	Success    bool               `json:"success"`
	JobID      string             `json:"job_id"`
	Status     entity.Status      `json:"status"`
	Message    string             `json:"message,omitempty"`
	Automation service.Automation `json:"automation"`
}

func newAutomationResp(job service.Automation, msg string) automationResp {
	return automationResp{
		Success:    true,
		JobID:      job.ID,
		Status:     job.Status,
		Message:    msg,
		Automation: job,
	}
}

type automationListResp struct {
	Success     bool                 `json:"success"`
	Automations []service.Automation `json:"automations"`
	Total       int                  `json:"total"`
	Page        int                  `json:"page"`
	PerPage     int                  `json:"per_page"`
}

// TriggerAutomation godoc
// @Summary Trigger an automation job
// @Tags automations
// @Accept json
// @Produce json
// @Param request body triggerDTO true "automation"
// @Success 201 {object} automationResp
// @Failure 400 {object} apiError
// @Router /automations/trigger [post]
func (h *Handler) TriggerAutomation(w http.ResponseWriter, r *http.Request) {
	var dto triggerDTO
	if err := decodeBody(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	job, err := h.automations.Trigger(r.Context(), service.TriggerRequest{
		Module: dto.Module,
		Action: dto.Action,
		Params: dto.Params,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "Automation job not found")
		return
	}

	writeJSON(w, http.StatusCreated, newAutomationResp(job,
		"Automation "+dto.Action+" started for module "+dto.Module))
}

// ListAutomations godoc
// @Summary List automation jobs
// @Tags automations
// @Produce json
// @Param status query string false "running, completed or cancelled"
// @Param module query string false "module id"
// @Param page query int false "page (1-based)"
// @Param per_page query int false "page size"
// @Success 200 {object} automationListResp
// @Failure 400 {object} apiError
// @Router /automations [get]
func (h *Handler) ListAutomations(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	jobs, total := h.automations.List(service.AutomationFilter{
		Status: entity.Status(q.Get("status")),
		Module: q.Get("module"),
	}, p.window())

	writeJSON(w, http.StatusOK, automationListResp{
		Success:     true,
		Automations: jobs,
		Total:       total,
		Page:        p.Page,
		PerPage:     p.PerPage,
	})
}

// GetAutomation godoc
// @Summary Get automation job
// @Tags automations
// @Produce json
// @Param id path string true "job id"
// @Success 200 {object} automationResp
// @Failure 404 {object} apiError
// @Router /automations/{id} [get]
func (h *Handler) GetAutomation(w http.ResponseWriter, r *http.Request) {
	job, err := h.automations.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, "Automation job not found")
		return
	}
	writeJSON(w, http.StatusOK, newAutomationResp(job, ""))
}

// CancelAutomation godoc
// @Summary Cancel a running automation job
// @Description Cancelling a cancelled job is a no-op. A completed job cannot be cancelled.
// @Tags automations
// @Produce json
// @Param id path string true "job id"
// @Success 200 {object} automationResp
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /automations/{id}/cancel [post]
func (h *Handler) CancelAutomation(w http.ResponseWriter, r *http.Request) {
	job, err := h.automations.Cancel(chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, newAutomationResp(job, "Automation cancelled"))
	case errors.Is(err, registry.ErrTerminal) && job.Status == entity.StatusCancelled:
		writeJSON(w, http.StatusOK, newAutomationResp(job, "Automation already cancelled"))
	case errors.Is(err, registry.ErrTerminal):
		writeErr(w, http.StatusConflict, "Job is already "+string(job.Status))
	default:
		h.writeServiceError(w, r, err, "Automation job not found")
	}
}

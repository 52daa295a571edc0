package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"surfaceflow/internal/entity"
	"surfaceflow/internal/fixture"
	"surfaceflow/internal/service"
)

type enrichDTO struct {
	LeadData map[string]any `json:"lead_data"`
	Source   string         `json:"source"`
}

type enrichResp struct {
	Success      bool               `json:"success"`
	EnrichmentID string             `json:"enrichment_id"`
	Lead         map[string]any     `json:"lead"`
	EnrichedData fixture.Enrichment `json:"enriched_data"`
	Message      string             `json:"message"`
}

type enrichmentResp struct {
	Success    bool               `json:"success"`
	Enrichment service.Enrichment `json:"enrichment"`
}

type enrichmentHistoryResp struct {
	Success     bool               `json:"success"`
	Count       int                `json:"count"`
	Enrichments []entity.LedgerRow `json:"enrichments"`
}

type enrichmentListResp struct {
	Success     bool                 `json:"success"`
	Enrichments []service.Enrichment `json:"enrichments"`
	Total       int                  `json:"total"`
	Page        int                  `json:"page"`
	PerPage     int                  `json:"per_page"`
}

// EnrichLead godoc
// @Summary Enrich a Salesforce lead
// @Description Fabricates contact details for a lead. Either name or company is required.
// @Tags lead-enrichment
// @Accept json
// @Produce json
// @Param request body enrichDTO true "lead"
// @Success 200 {object} enrichResp
// @Failure 400 {object} apiError
// @Router /salesforce/leads/enrich [post]
func (h *Handler) EnrichLead(w http.ResponseWriter, r *http.Request) {
	var dto enrichDTO
	if err := decodeBody(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	rec, err := h.enrichments.Enrich(r.Context(), dto.LeadData, dto.Source)
	if err != nil {
		h.writeServiceError(w, r, err, "Enrichment job not found")
		return
	}

	writeJSON(w, http.StatusOK, enrichResp{
		Success:      true,
		EnrichmentID: rec.ID,
		Lead:         rec.Payload.Lead,
		EnrichedData: rec.Result,
		Message:      "Lead enriched successfully",
	})
}

// ListEnrichments godoc
// @Summary List enrichments made since startup
// @Tags lead-enrichment
// @Produce json
// @Param page query int false "page (1-based)"
// @Param per_page query int false "page size"
// @Success 200 {object} enrichmentListResp
// @Failure 400 {object} apiError
// @Router /salesforce/leads [get]
func (h *Handler) ListEnrichments(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total := h.enrichments.List(p.window())
	writeJSON(w, http.StatusOK, enrichmentListResp{
		Success:     true,
		Enrichments: items,
		Total:       total,
		Page:        p.Page,
		PerPage:     p.PerPage,
	})
}

// EnrichmentHistory godoc
// @Summary Lead enrichment audit trail
// @Tags lead-enrichment
// @Produce json
// @Success 200 {object} enrichmentHistoryResp
// @Failure 500 {object} apiError
// @Router /salesforce/leads/history [get]
func (h *Handler) EnrichmentHistory(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.readLedger(w, r, h.enrichments.History)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, enrichmentHistoryResp{Success: true, Count: len(rows), Enrichments: rows})
}

// EnrichmentStatus godoc
// @Summary Get enrichment
// @Tags lead-enrichment
// @Produce json
// @Param id path string true "enrichment id"
// @Success 200 {object} enrichmentResp
// @Failure 404 {object} apiError
// @Router /salesforce/leads/status/{id} [get]
func (h *Handler) EnrichmentStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := h.enrichments.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, "Enrichment job not found")
		return
	}
	writeJSON(w, http.StatusOK, enrichmentResp{Success: true, Enrichment: rec})
}

// MockLeads godoc
// @Summary Demo Salesforce leads
// @Tags lead-enrichment
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /salesforce/leads/mock-leads [get]
func (h *Handler) MockLeads(w http.ResponseWriter, r *http.Request) {
	leads := h.enrichments.MockLeads()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"leads":   leads,
		"total":   len(leads),
	})
}

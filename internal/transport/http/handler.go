package httptransport

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"surfaceflow/internal/registry"
	"surfaceflow/internal/service"
)

type Handler struct {
	automations *service.AutomationService
	bookings    *service.BookingService
	enrichments *service.EnrichmentService
	log         *zap.Logger
}

func NewHandler(automations *service.AutomationService, bookings *service.BookingService, enrichments *service.EnrichmentService, log *zap.Logger) *Handler {
	return &Handler{
		automations: automations,
		bookings:    bookings,
		enrichments: enrichments,
		log:         log,
	}
}

// writeServiceError maps service errors onto HTTP responses. notFound is the
// client-facing message for missing records.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, service.ErrJobNotSynced):
		writeErr(w, http.StatusNotFound, notFound)
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

package httptransport

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	"surfaceflow/internal/entity"
	"surfaceflow/internal/fixture"
	"surfaceflow/internal/registry"
	"surfaceflow/internal/service"
)

type searchDTO struct {
	JobData map[string]any `json:"job_data"`
	// Portal searches send the job id and location flat.
	JobID string `json:"job_id"`
	City  string `json:"city"`
	State string `json:"state"`
}

type searchResp struct {
	Success              bool             `json:"success"`
	BookingJobID         string           `json:"booking_job_id"`
	JobID                string           `json:"job_id"`
	Location             fixture.Location `json:"location"`
	Hotels               []fixture.Hotel  `json:"hotels"`
	Recommended          *fixture.Hotel   `json:"recommended"`
	TotalSourcesSearched int              `json:"total_sources_searched"`
	Sources              []string         `json:"sources"`
}

type runDTO struct {
	JobID    string `json:"job_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type runResp struct {
	Success             bool          `json:"success"`
	AutomationID        string        `json:"automation_id"`
	JobID               string        `json:"job_id"`
	Status              entity.Status `json:"status"`
	Message             string        `json:"message"`
	EstimatedCompletion string        `json:"estimated_completion"`
}

type approveDTO struct {
	BookingJobID string `json:"booking_job_id"`
	HotelID      string `json:"hotel_id"`
}

type approveResp struct {
	Success            bool            `json:"success"`
	BookingJobID       string          `json:"booking_job_id"`
	Status             entity.Status   `json:"status"`
	ConfirmationNumber string          `json:"confirmation_number"`
	Message            string          `json:"message"`
	Booking            service.Booking `json:"booking"`
}

type bookingResp struct {
	Success bool            `json:"success"`
	Booking service.Booking `json:"booking"`
}

type bookingListResp struct {
	Success  bool              `json:"success"`
	Bookings []service.Booking `json:"bookings"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
}

type searchesResp struct {
	Success  bool               `json:"success"`
	Count    int                `json:"count"`
	Searches []entity.LedgerRow `json:"searches"`
}

type approvalsResp struct {
	Success   bool               `json:"success"`
	Count     int                `json:"count"`
	Approvals []entity.LedgerRow `json:"approvals"`
}

type syncDTO struct {
	JobData map[string]any `json:"job_data"`
	Source  string         `json:"source"`
}

type jobResp struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Job     map[string]any `json:"job"`
}

type jobListResp struct {
	Success bool             `json:"success"`
	Jobs    []map[string]any `json:"jobs"`
	Total   int              `json:"total"`
}

// SearchHotels godoc
// @Summary Search hotels for a BuilderTrend job
// @Description Builds mock offers from every source, cheapest first, and opens a booking awaiting approval.
// @Tags hotel-booking
// @Accept json
// @Produce json
// @Param request body searchDTO true "job"
// @Success 200 {object} searchResp
// @Failure 400 {object} apiError
// @Router /buildertrend/hotel-booking/search [post]
func (h *Handler) SearchHotels(w http.ResponseWriter, r *http.Request) {
	var dto searchDTO
	if err := decodeBody(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	booking, err := h.bookings.Search(r.Context(), service.SearchRequest{
		JobData: dto.JobData,
		JobID:   dto.JobID,
		City:    dto.City,
		State:   dto.State,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "Booking job not found")
		return
	}

	sources := fixture.Sources()
	writeJSON(w, http.StatusOK, searchResp{
		Success:              true,
		BookingJobID:         booking.ID,
		JobID:                booking.Payload.JobID,
		Location:             booking.Payload.Location,
		Hotels:               booking.Result.Hotels,
		Recommended:          booking.Result.Recommended,
		TotalSourcesSearched: len(sources),
		Sources:              sources,
	})
}

// RunHotelSearch godoc
// @Summary Start a hotel search automation
// @Tags hotel-booking
// @Accept json
// @Produce json
// @Param request body runDTO true "job"
// @Success 200 {object} runResp
// @Failure 400 {object} apiError
// @Router /buildertrend/hotel-booking/run [post]
func (h *Handler) RunHotelSearch(w http.ResponseWriter, r *http.Request) {
	var dto runDTO
	if err := decodeBody(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	job, err := h.bookings.Run(r.Context(), service.RunRequest{
		JobID:    dto.JobID,
		CheckIn:  dto.CheckIn,
		CheckOut: dto.CheckOut,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "Job not found")
		return
	}

	writeJSON(w, http.StatusOK, runResp{
		Success:             true,
		AutomationID:        job.ID,
		JobID:               dto.JobID,
		Status:              job.Status,
		Message:             "Hotel search automation started",
		EstimatedCompletion: "30 seconds",
	})
}

// ApproveBooking godoc
// @Summary Approve a booking
// @Description hotel_id defaults to the recommended offer. Approving twice returns the existing confirmation.
// @Tags hotel-booking
// @Accept json
// @Produce json
// @Param request body approveDTO true "approval"
// @Success 200 {object} approveResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /buildertrend/hotel-booking/approve [post]
func (h *Handler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	var dto approveDTO
	if err := decodeBody(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	msg := "Booking approved successfully"
	booking, err := h.bookings.Approve(r.Context(), dto.BookingJobID, dto.HotelID)
	if errors.Is(err, registry.ErrTerminal) {
		msg, err = "Booking already approved", nil
	}
	if err != nil {
		h.writeServiceError(w, r, err, "Booking job not found")
		return
	}

	writeJSON(w, http.StatusOK, approveResp{
		Success:            true,
		BookingJobID:       booking.ID,
		Status:             booking.Status,
		ConfirmationNumber: booking.FieldString("confirmation_number"),
		Message:            msg,
		Booking:            booking,
	})
}

// BookingStatus godoc
// @Summary Booking for a BuilderTrend job
// @Tags hotel-booking
// @Produce json
// @Param jobID path string true "BuilderTrend job id"
// @Success 200 {object} bookingResp
// @Failure 404 {object} apiError
// @Router /buildertrend/hotel-booking/status/{jobID} [get]
func (h *Handler) BookingStatus(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.StatusByJob(chi.URLParam(r, "jobID"))
	if err != nil {
		h.writeServiceError(w, r, err, "No booking found for this job")
		return
	}
	writeJSON(w, http.StatusOK, bookingResp{Success: true, Booking: booking})
}

// GetBooking godoc
// @Summary Get booking
// @Tags hotel-booking
// @Produce json
// @Param id path string true "booking job id"
// @Success 200 {object} bookingResp
// @Failure 404 {object} apiError
// @Router /buildertrend/hotel-booking/bookings/{id} [get]
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err, "Booking job not found")
		return
	}
	writeJSON(w, http.StatusOK, bookingResp{Success: true, Booking: booking})
}

// BookingHistory godoc
// @Summary List bookings
// @Tags hotel-booking
// @Produce json
// @Param status query string false "pending_approval or approved"
// @Param page query int false "page (1-based)"
// @Param per_page query int false "page size"
// @Success 200 {object} bookingListResp
// @Failure 400 {object} apiError
// @Router /buildertrend/hotel-booking/history [get]
func (h *Handler) BookingHistory(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, total := h.bookings.History(entity.Status(r.URL.Query().Get("status")), p.window())
	writeJSON(w, http.StatusOK, bookingListResp{
		Success:  true,
		Bookings: bookings,
		Total:    total,
		Page:     p.Page,
		PerPage:  p.PerPage,
	})
}

// HotelSearches godoc
// @Summary Hotel search audit trail
// @Tags hotel-booking
// @Produce json
// @Success 200 {object} searchesResp
// @Failure 500 {object} apiError
// @Router /buildertrend/hotel-booking/searches [get]
func (h *Handler) HotelSearches(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.readLedger(w, r, h.bookings.Searches)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, searchesResp{Success: true, Count: len(rows), Searches: rows})
}

// BookingApprovals godoc
// @Summary Booking approval audit trail
// @Tags hotel-booking
// @Produce json
// @Success 200 {object} approvalsResp
// @Failure 500 {object} apiError
// @Router /buildertrend/hotel-booking/approvals [get]
func (h *Handler) BookingApprovals(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.readLedger(w, r, h.bookings.Approvals)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, approvalsResp{Success: true, Count: len(rows), Approvals: rows})
}

// ListJobs godoc
// @Summary List synced BuilderTrend jobs
// @Tags buildertrend
// @Produce json
// @Success 200 {object} jobListResp
// @Router /buildertrend/jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.bookings.Jobs()
	writeJSON(w, http.StatusOK, jobListResp{Success: true, Jobs: jobs, Total: len(jobs)})
}

// GetJob godoc
// @Summary Get a synced BuilderTrend job
// @Tags buildertrend
// @Produce json
// @Param jobID path string true "BuilderTrend job id"
// @Success 200 {object} jobResp
// @Failure 404 {object} apiError
// @Router /buildertrend/jobs/{jobID} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.bookings.Job(chi.URLParam(r, "jobID"))
	if err != nil {
		h.writeServiceError(w, r, err, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, jobResp{Success: true, Job: job})
}

// SyncJob godoc
// @Summary Sync a BuilderTrend job
// @Tags buildertrend
// @Accept json
// @Produce json
// @Param jobID path string true "BuilderTrend job id"
// @Param request body syncDTO true "job"
// @Success 200 {object} jobResp
// @Failure 400 {object} apiError
// @Router /buildertrend/jobs/{jobID}/sync [post]
func (h *Handler) SyncJob(w http.ResponseWriter, r *http.Request) {
	var dto syncDTO
	if err := decodeBody(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	job := h.bookings.SyncJob(chi.URLParam(r, "jobID"), dto.JobData, dto.Source)
	writeJSON(w, http.StatusOK, jobResp{Success: true, Message: "Job synced successfully", Job: job})
}

// readLedger reports read failures, parse errors included, as 500 with the
// underlying message.
func (h *Handler) readLedger(w http.ResponseWriter, r *http.Request, read func(ctx context.Context) ([]entity.LedgerRow, error)) ([]entity.LedgerRow, bool) {
	rows, err := read(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return nil, false
	}
	return rows, true
}

package service

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"surfaceflow/internal/entity"
	"surfaceflow/internal/fixture"
	"surfaceflow/internal/registry"
)

type BookingPayload struct {
	JobID    string           `json:"job_id"`
	JobData  map[string]any   `json:"job_data"`
	Location fixture.Location `json:"location"`
}

type BookingResult struct {
	Hotels      []fixture.Hotel `json:"hotels"`
	Recommended *fixture.Hotel  `json:"recommended"`
}

type (
	Booking         = entity.Record[BookingPayload, BookingResult]
	BookingRegistry = registry.Registry[BookingPayload, BookingResult]
)

func NewBookingRegistry(opts ...registry.Option) *BookingRegistry {
	return registry.New[BookingPayload, BookingResult](entity.KindBooking, entity.BookingTransitions, opts...)
}

// ErrJobNotSynced is returned for lookups of BuilderTrend jobs never synced.
var ErrJobNotSynced = errors.New("job not found")

// BookingService runs the BuilderTrend hotel booking workflow.
type BookingService struct {
	reg         *BookingRegistry
	ledger      Ledger
	automations *AutomationService
	jobs        *jobCatalog
	log         *zap.Logger
	now         func() time.Time
}

func NewBookingService(reg *BookingRegistry, ledger Ledger, automations *AutomationService, log *zap.Logger) *BookingService {
	return &BookingService{
		reg:         reg,
		ledger:      ledger,
		automations: automations,
		jobs:        newJobCatalog(),
		log:         log,
		now:         utcNow,
	}
}

type SearchRequest struct {
	// JobData is the job as scraped by the browser extension; jobId and
	// address.city/address.state are read from it.
	JobData map[string]any
	// JobID, City and State are used when JobData lacks them.
	JobID string
	City  string
	State string
}

func (s *BookingService) Search(ctx context.Context, req SearchRequest) (Booking, error) {
	if len(req.JobData) == 0 && req.JobID == "" {
		return Booking{}, validationError("job_data is required")
	}

	jobData := maps.Clone(req.JobData)
	if jobData == nil {
		jobData = map[string]any{}
	}
	jobID := firstNonEmpty(stringField(jobData, "jobId"), stringField(jobData, "job_id"), req.JobID, "unknown")

	loc := fixture.Location{City: req.City, State: req.State}
	if addr, ok := jobData["address"].(map[string]any); ok {
		loc.City = firstNonEmpty(stringField(addr, "city"), loc.City)
		loc.State = firstNonEmpty(stringField(addr, "state"), loc.State)
	}

	s.jobs.upsert(jobID, jobData, "chrome_extension", s.now())

	hotels := fixture.Hotels(loc)
	result := BookingResult{Hotels: hotels}
	if len(hotels) > 0 {
		best := hotels[0]
		result.Recommended = &best
	}

	booking, err := s.reg.Create(
		BookingPayload{JobID: jobID, JobData: jobData, Location: loc},
		entity.StatusPendingApproval,
		result,
		map[string]string{"job_id": jobID},
	)
	if err != nil {
		return Booking{}, err
	}

	row := entity.LedgerRow{
		{Name: "id", Value: registry.NewShortID()},
		{Name: "booking_job_id", Value: booking.ID},
		{Name: "job_id", Value: jobID},
		{Name: "city", Value: loc.City},
		{Name: "state", Value: loc.State},
		{Name: "hotels_found", Value: strconv.Itoa(len(hotels))},
		{Name: "recommended_hotel_id", Value: ""},
		{Name: "recommended_source", Value: ""},
		{Name: "recommended_total_price", Value: ""},
		{Name: "created_at", Value: isoTime(booking.CreatedAt)},
	}
	if rec := result.Recommended; rec != nil {
		row[6].Value = rec.ID
		row[7].Value = rec.Source
		row[8].Value = money(rec.TotalPrice)
	}
	appendLedger(ctx, s.ledger, s.log, entity.LedgerHotelSearches, row)

	s.log.Info("hotel search completed",
		zap.String("booking_job_id", booking.ID),
		zap.String("job_id", jobID),
		zap.String("city", loc.City),
		zap.Int("hotels", len(hotels)),
	)
	return booking, nil
}

type RunRequest struct {
	JobID    string
	CheckIn  string
	CheckOut string
}

// Run starts a hotel-search automation for a job, for portal-initiated
// searches.
func (s *BookingService) Run(ctx context.Context, req RunRequest) (Automation, error) {
	if req.JobID == "" {
		return Automation{}, validationError("job_id is required")
	}
	return s.automations.Trigger(ctx, TriggerRequest{
		Module: fixture.ModuleHotelBooking,
		Action: "hotel_search",
		Params: map[string]any{
			"job_id":    req.JobID,
			"check_in":  req.CheckIn,
			"check_out": req.CheckOut,
		},
	})
}

// ConfirmationNumber is the booking reference handed back on approval.
func ConfirmationNumber(bookingID string) string {
	return "SF-" + strings.ToUpper(bookingID)
}

// Approve confirms a booking for hotelID, or for the recommended hotel when
// hotelID is empty. Approving an approved booking returns it unchanged with
// registry.ErrTerminal and writes nothing to the ledger.
func (s *BookingService) Approve(ctx context.Context, bookingID, hotelID string) (Booking, error) {
	if bookingID == "" {
		return Booking{}, validationError("booking_job_id is required")
	}

	current, err := s.reg.Get(bookingID)
	if err != nil {
		return Booking{}, err
	}
	if entity.BookingTransitions.Terminal(current.Status) {
		return current, errors.Wrapf(registry.ErrTerminal, "booking %q is %s", bookingID, current.Status)
	}

	// Offers picked outside our own search results (the extension sends its
	// own ids) are recorded by id alone.
	var hotel fixture.Hotel
	switch {
	case hotelID != "":
		hotel = fixture.Hotel{ID: hotelID}
		if h, ok := fixture.FindHotel(current.Result.Hotels, hotelID); ok {
			hotel = h
		}
	case current.Result.Recommended != nil:
		hotel = *current.Result.Recommended
	default:
		return Booking{}, validationError("hotel_id is required")
	}

	approvedAt := isoTime(s.now())
	confirmation := ConfirmationNumber(bookingID)
	booking, err := s.reg.Transition(bookingID, entity.StatusApproved, map[string]any{
		"approved_at":         approvedAt,
		"selected_hotel_id":   hotel.ID,
		"confirmation_number": confirmation,
	})
	if err != nil {
		return booking, err
	}

	appendLedger(ctx, s.ledger, s.log, entity.LedgerBookingApprovals, entity.LedgerRow{
		{Name: "id", Value: registry.NewShortID()},
		{Name: "booking_job_id", Value: booking.ID},
		{Name: "job_id", Value: booking.Payload.JobID},
		{Name: "hotel_id", Value: hotel.ID},
		{Name: "hotel_name", Value: hotel.Name},
		{Name: "source", Value: hotel.Source},
		{Name: "total_price", Value: approvalPrice(hotel)},
		{Name: "confirmation_number", Value: confirmation},
		{Name: "approved_at", Value: approvedAt},
	})

	s.log.Info("booking approved",
		zap.String("booking_job_id", booking.ID),
		zap.String("hotel_id", hotel.ID),
		zap.Float64("total_price", hotel.TotalPrice),
	)
	return booking, nil
}

// approvalPrice is blank for an offer we never priced.
func approvalPrice(h fixture.Hotel) string {
	if h.Name == "" {
		return ""
	}
	return money(h.TotalPrice)
}

func (s *BookingService) Get(bookingID string) (Booking, error) {
	return s.reg.Get(bookingID)
}

// StatusByJob returns the first booking created for a BuilderTrend job.
func (s *BookingService) StatusByJob(jobID string) (Booking, error) {
	found, _ := s.reg.List(registry.Filter{Tags: map[string]string{"job_id": jobID}}, registry.Page{Limit: 1})
	if len(found) == 0 {
		return Booking{}, errors.Wrapf(registry.ErrNotFound, "no booking for job %q", jobID)
	}
	return found[0], nil
}

func (s *BookingService) History(status entity.Status, p registry.Page) ([]Booking, int) {
	return s.reg.List(registry.Filter{Status: status}, p)
}

func (s *BookingService) Searches(ctx context.Context) ([]entity.LedgerRow, error) {
	return s.ledger.ReadAll(ctx, entity.LedgerHotelSearches)
}

func (s *BookingService) Approvals(ctx context.Context) ([]entity.LedgerRow, error) {
	return s.ledger.ReadAll(ctx, entity.LedgerBookingApprovals)
}

// SyncJob stores the latest copy of a BuilderTrend job.
func (s *BookingService) SyncJob(jobID string, data map[string]any, source string) map[string]any {
	if source == "" {
		source = "api"
	}
	return s.jobs.upsert(jobID, data, source, s.now())
}

func (s *BookingService) Jobs() []map[string]any {
	return s.jobs.all()
}

func (s *BookingService) Job(jobID string) (map[string]any, error) {
	job, ok := s.jobs.get(jobID)
	if !ok {
		return nil, errors.Wrapf(ErrJobNotSynced, "job %q", jobID)
	}
	return job, nil
}

// jobCatalog keeps synced BuilderTrend jobs keyed by their own job id.
type jobCatalog struct {
	mu    sync.RWMutex
	jobs  map[string]map[string]any
	order []string
}

func newJobCatalog() *jobCatalog {
	return &jobCatalog{jobs: make(map[string]map[string]any)}
}

func (c *jobCatalog) upsert(jobID string, data map[string]any, source string, now time.Time) map[string]any {
	job := maps.Clone(data)
	if job == nil {
		job = map[string]any{}
	}
	job["jobId"] = jobID
	job["synced_at"] = isoTime(now)
	job["source"] = source

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.jobs[jobID]; !exists {
		c.order = append(c.order, jobID)
	}
	c.jobs[jobID] = job
	return maps.Clone(job)
}

func (c *jobCatalog) get(jobID string) (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	job, ok := c.jobs[jobID]
	return maps.Clone(job), ok
}

func (c *jobCatalog) all() []map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]map[string]any, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, maps.Clone(c.jobs[id]))
	}
	return out
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"surfaceflow/internal/entity"
	"surfaceflow/internal/fixture"
	"surfaceflow/internal/registry"
)

// EnrichmentSource is recorded on every enrichment ledger row.
const EnrichmentSource = "mock_web_search"

type EnrichmentPayload struct {
	Lead   map[string]any `json:"lead_data"`
	Source string         `json:"source"`
}

type (
	Enrichment         = entity.Record[EnrichmentPayload, fixture.Enrichment]
	EnrichmentRegistry = registry.Registry[EnrichmentPayload, fixture.Enrichment]
)

func NewEnrichmentRegistry(opts ...registry.Option) *EnrichmentRegistry {
	return registry.New[EnrichmentPayload, fixture.Enrichment](entity.KindEnrichment, entity.EnrichmentTransitions, opts...)
}

type EnrichmentService struct {
	reg    *EnrichmentRegistry
	ledger Ledger
	gen    *fixture.Generator
	log    *zap.Logger
	now    func() time.Time
}

func NewEnrichmentService(reg *EnrichmentRegistry, ledger Ledger, gen *fixture.Generator, log *zap.Logger) *EnrichmentService {
	return &EnrichmentService{reg: reg, ledger: ledger, gen: gen, log: log, now: utcNow}
}

// Enrich fabricates contact data for a lead. Either name or company must be
// present.
func (s *EnrichmentService) Enrich(ctx context.Context, lead map[string]any, source string) (Enrichment, error) {
	name := stringField(lead, "name")
	company := stringField(lead, "company")
	if name == "" && company == "" {
		return Enrichment{}, validationError("name or company is required for enrichment")
	}
	if source == "" {
		source = "portal"
	}

	now := s.now()
	enriched := s.gen.Enrichment(name, company, now)

	rec, err := s.reg.Create(
		EnrichmentPayload{Lead: lead, Source: source},
		entity.StatusCompleted,
		enriched,
		map[string]string{"company": company},
	)
	if err != nil {
		return Enrichment{}, err
	}

	appendLedger(ctx, s.ledger, s.log, entity.LedgerLeadEnrichments, entity.LedgerRow{
		{Name: "id", Value: rec.ID},
		{Name: "lead_name", Value: firstNonEmpty(name, "N/A")},
		{Name: "company", Value: firstNonEmpty(company, "N/A")},
		{Name: "original_email", Value: stringField(lead, "email")},
		{Name: "original_phone", Value: stringField(lead, "phone")},
		{Name: "enriched_email", Value: enriched.Email},
		{Name: "enriched_phone", Value: enriched.Phone},
		{Name: "enriched_title", Value: enriched.Title},
		{Name: "enriched_linkedin", Value: enriched.LinkedIn},
		{Name: "enriched_company_website", Value: enriched.CompanyWebsite},
		{Name: "enriched_company_size", Value: enriched.CompanySize},
		{Name: "enriched_industry", Value: enriched.Industry},
		{Name: "confidence_score", Value: strconv.Itoa(enriched.ConfidenceScore)},
		{Name: "source", Value: EnrichmentSource},
		{Name: "status", Value: string(rec.Status)},
		{Name: "created_at", Value: isoTime(rec.CreatedAt)},
	})

	s.log.Info("lead enriched",
		zap.String("enrichment_id", rec.ID),
		zap.String("source", source),
		zap.String("title", enriched.Title),
		zap.Int("confidence", enriched.ConfidenceScore),
	)
	return rec, nil
}

func (s *EnrichmentService) Get(id string) (Enrichment, error) {
	return s.reg.Get(id)
}

func (s *EnrichmentService) List(p registry.Page) ([]Enrichment, int) {
	return s.reg.List(registry.Filter{}, p)
}

// History reads the enrichment audit trail.
func (s *EnrichmentService) History(ctx context.Context) ([]entity.LedgerRow, error) {
	return s.ledger.ReadAll(ctx, entity.LedgerLeadEnrichments)
}

func (s *EnrichmentService) MockLeads() []fixture.Lead {
	return fixture.MockLeads()
}

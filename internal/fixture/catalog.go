package fixture

type Lead struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Company   string `json:"company"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

// MockLeads are the Salesforce leads shown on the portal demo page.
func MockLeads() []Lead {
	return []Lead{
		{ID: "lead_001", Name: "John Martinez", Company: "Coastal Construction Group", Status: "New", Source: "Website", CreatedAt: "2025-12-05T10:30:00Z"},
		{ID: "lead_002", Name: "Sarah Thompson", Company: "Bay Area Builders", Email: "sthompson@baybuilders.com", Title: "Project Manager", Status: "Contacted", Source: "Referral", CreatedAt: "2025-12-04T14:15:00Z"},
		{ID: "lead_003", Name: "Michael Chen", Company: "Pacific General Contractors", Phone: "+1 (415) 555-0123", Status: "New", Source: "Trade Show", CreatedAt: "2025-12-03T09:45:00Z"},
		{ID: "lead_004", Name: "Emily Rodriguez", Company: "Sunshine State Developers", Status: "Qualified", Source: "LinkedIn", CreatedAt: "2025-12-02T16:20:00Z"},
		{ID: "lead_005", Name: "David Wilson", Company: "Metro Commercial Construction", Email: "dwilson@metrocc.com", Phone: "+1 (305) 555-0456", Title: "VP Operations", Status: "Enriched", Source: "Cold Outreach", CreatedAt: "2025-12-01T11:00:00Z"},
		{ID: "lead_006", Name: "Jennifer Adams", Company: "Elite Home Builders", Status: "New", Source: "Website", CreatedAt: "2025-11-30T13:30:00Z"},
		{ID: "lead_007", Name: "Robert Taylor", Company: "Summit Construction Inc", Title: "Owner", Status: "Contacted", Source: "Referral", CreatedAt: "2025-11-29T08:15:00Z"},
		{ID: "lead_008", Name: "Amanda Foster", Company: "Pinnacle Developers LLC", Email: "afoster@pinnacledev.com", Title: "Director of Projects", Status: "Enriched", Source: "Conference", CreatedAt: "2025-11-28T15:45:00Z"},
	}
}

type Module struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Status        string         `json:"status"`
	Version       *string        `json:"version"`
	Features      []string       `json:"features,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Statistics    map[string]any `json:"statistics,omitempty"`
}

const (
	ModuleCore         = "AM-001"
	ModuleHotelBooking = "AM-002"
	ModuleServiceTitan = "AM-003"
)

func strPtr(s string) *string { return &s }

// Modules is the automation module catalogue.
func Modules() []Module {
	return []Module{
		{
			ID:          ModuleCore,
			Name:        "Core Platform",
			Description: "Core SurfaceFlow platform functionality",
			Status:      "active",
			Version:     strPtr("1.0.0"),
		},
		{
			ID:          ModuleHotelBooking,
			Name:        "BuilderTrend Hotel Booking",
			Description: "Automated hotel booking from BuilderTrend job data",
			Status:      "active",
			Version:     strPtr("1.0.0"),
			Features: []string{
				"Job data extraction from BuilderTrend",
				"OTA price comparison (ARB, Expedia, Kayak, Booking.com, Hotels.com)",
				"Internal housing inventory check",
				"AI-powered best deal selection",
				"One-click booking approval",
			},
		},
		{
			ID:          ModuleServiceTitan,
			Name:        "ServiceTitan Integration",
			Description: "Service dispatch automation for ServiceTitan",
			Status:      "coming_soon",
		},
	}
}

// ModuleDetail returns the detailed view of a module. Only modules with
// configuration are available in detail.
func ModuleDetail(id string) (Module, bool) {
	if id != ModuleHotelBooking {
		return Module{}, false
	}
	return Module{
		ID:          ModuleHotelBooking,
		Name:        "BuilderTrend Hotel Booking",
		Description: "Automated hotel booking from BuilderTrend job data",
		Status:      "active",
		Version:     strPtr("1.0.0"),
		Configuration: map[string]any{
			"ota_sources":            []string{"internal", "airbnb", "expedia", "kayak", "booking", "hotels"},
			"auto_approve_threshold": 150.00,
			"notification_channels":  []string{"sms", "email", "portal"},
		},
		Statistics: map[string]any{
			"total_bookings": 245,
			"avg_savings":    47.50,
			"success_rate":   98.5,
		},
	}, true
}

package fixture

import (
	"fmt"
	"strings"
	"time"
)

type Enrichment struct {
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Mobile          string   `json:"mobile"`
	LinkedIn        string   `json:"linkedin"`
	Company         string   `json:"company"`
	CompanyWebsite  string   `json:"company_website"`
	CompanySize     string   `json:"company_size"`
	Industry        string   `json:"industry"`
	Location        string   `json:"location"`
	ConfidenceScore int      `json:"confidence_score"`
	SourcesChecked  []string `json:"sources_checked"`
	LastUpdated     string   `json:"last_updated"`
}

var (
	titles = []string{
		"Vice President of Operations",
		"Director of Construction",
		"Project Manager",
		"General Manager",
		"Chief Operating Officer",
		"President",
		"Owner",
		"Estimator",
		"Superintendent",
	}
	companySizes = []string{"1-10", "11-50", "51-200", "201-500", "500+"}
	industries   = []string{"Construction", "Real Estate", "General Contracting", "Commercial Construction"}
	regions      = []string{"Florida", "Texas", "California", "New York", "Arizona"}
)

// Enrichment fabricates contact details for a lead. Email and website are
// derived from name and company; the rest comes from the generator.
func (g *Generator) Enrichment(name, company string, now time.Time) Enrichment {
	g.mu.Lock()
	defer g.mu.Unlock()

	parts := strings.Fields(name)
	first, last := "unknown", "user"
	if len(parts) > 0 {
		first = strings.ToLower(parts[0])
	}
	if len(parts) > 1 {
		last = strings.ToLower(parts[len(parts)-1])
	}
	domain := "company"
	if company != "" {
		domain = strings.ToLower(strings.ReplaceAll(company, " ", ""))
	}

	return Enrichment{
		Name:            name,
		Title:           g.pick(titles),
		Email:           fmt.Sprintf("%s.%s@%s.com", first, last, domain),
		Phone:           g.phone(),
		Mobile:          g.phone(),
		LinkedIn:        fmt.Sprintf("https://linkedin.com/in/%s-%s-%d", first, last, g.between(1000, 9999)),
		Company:         company,
		CompanyWebsite:  fmt.Sprintf("https://www.%s.com", domain),
		CompanySize:     g.pick(companySizes),
		Industry:        g.pick(industries),
		Location:        g.pick(regions),
		ConfidenceScore: g.between(75, 98),
		SourcesChecked:  []string{"LinkedIn", "Company Website", "Business Directories", "News Articles"},
		LastUpdated:     now.UTC().Format(time.RFC3339),
	}
}

func (g *Generator) phone() string {
	return fmt.Sprintf("+1 (%d) %d-%d", g.between(200, 999), g.between(200, 999), g.between(1000, 9999))
}

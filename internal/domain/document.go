package domain

import "fmt"

// Document is the canonical disclosure record produced by every source adapter.
type Document struct {
	SourceID    string
	Source      string
	Description string
	FilerName   string
	Ticker      string
	PeriodEnd   string
	PublishedAt string
	DetailURL   string
}

// Key returns the global deduplication identifier, stable across re-fetches.
func (d Document) Key() string {
	return fmt.Sprintf("%s_%s", d.Source, d.SourceID)
}

// Category is the classification outcome deciding routing and template.
type Category string

const (
	CategoryEarnings         Category = "earnings"
	CategoryGuidanceRevision Category = "guidance_revision"
	CategoryRegulatoryEvent  Category = "regulatory_event"
	CategoryAnnualReport     Category = "annual_report"
	CategorySectorNews       Category = "sector_news"
	CategoryIgnore           Category = "ignore"
)

// Package notify builds channel-agnostic notification messages from
// classified documents and optional enrichment data.
package notify

import (
	"fmt"
	"strings"
	"time"

	"DisclosureNotifier/internal/domain"
)

const (
	earningsUsername = "決算Bot"
	newsUsername     = "ニュースBot"

	earningsBodyBudget = 150
	newsBodyBudget     = 200

	colorEarnings   = 0x00b4d8
	colorRevisionUp = 0x2dc653
	colorRevisionDn = 0xe63946
	colorRegulatory = 0x9b5de5
	colorAnnual     = 0xf4a261
	colorSector     = 0x577590
	colorDefault    = 0xadb5bd
)

// metricField binds a display label to its financial line, in the fixed
// order earnings embeds always use.
var metricFields = []struct {
	Label string
	Line  domain.MetricLine
}{
	{"💹 売上高", domain.LineRevenue},
	{"🏭 営業利益", domain.LineOperatingIncome},
	{"🧾 税引前利益", domain.LinePretaxIncome},
	{"📈 純利益", domain.LineNetIncome},
	{"💧 営業CF", domain.LineOperatingCashFlow},
	{"🏦 有利子負債", domain.LineTotalDebt},
}

var newsLabels = map[domain.Category]string{
	domain.CategoryGuidanceRevision: "🔄 業績修正",
	domain.CategoryRegulatoryEvent:  "💊 新薬・薬事承認",
	domain.CategoryAnnualReport:     "📘 年次報告",
	domain.CategorySectorNews:       "🤝 業界ニュース",
}

// BuildEarnings formats an earnings document. The metric fields are always
// present in the same order; unresolved values render as "N/A". enc may be
// nil when enrichment was unavailable.
func BuildEarnings(doc domain.Document, enc *domain.Enrichment, now time.Time) domain.Message {
	company := doc.FilerName
	if enc != nil && enc.Company != "" {
		company = enc.Company
	}
	if company == "" {
		company = "不明"
	}

	sector := "不明"
	if enc != nil && enc.Sector != "" {
		sector = enc.Sector
	}

	period := doc.PeriodEnd
	if period == "" && enc != nil {
		period = enc.Period
	}

	title := "📊 " + company
	if doc.Ticker != "" {
		title += fmt.Sprintf("（%s）", doc.Ticker)
	}
	title += " 決算発表"

	fields := make([]domain.Field, 0, len(metricFields))
	for _, mf := range metricFields {
		fields = append(fields, domain.Field{
			Name:   mf.Label,
			Value:  formatMetric(enc.Metric(mf.Line)),
			Inline: true,
		})
	}

	return domain.Message{
		Username:  earningsUsername,
		Title:     title,
		Body:      excerpt(doc.Description, earningsBodyBudget),
		URL:       doc.DetailURL,
		Color:     colorEarnings,
		Fields:    fields,
		Footer:    fmt.Sprintf("セクター: %s　|　決算期: %s　|　%s", sector, orUnknown(period), strings.ToUpper(doc.Source)),
		Timestamp: now.UTC(),
	}
}

// BuildNews formats a non-earnings document for the general channel.
// guidance_revision picks its color by polarity: a downward keyword in the
// text selects the negative color.
func BuildNews(doc domain.Document, category domain.Category, now time.Time) domain.Message {
	label, ok := newsLabels[category]
	if !ok {
		label = "📌 開示情報"
	}

	color := colorDefault
	switch category {
	case domain.CategoryGuidanceRevision:
		if strings.Contains(doc.Description, "下方") {
			color = colorRevisionDn
		} else {
			color = colorRevisionUp
		}
	case domain.CategoryRegulatoryEvent:
		color = colorRegulatory
	case domain.CategoryAnnualReport:
		color = colorAnnual
	case domain.CategorySectorNews:
		color = colorSector
	}

	company := doc.FilerName
	if company == "" {
		company = "不明"
	}

	title := label + "｜" + company
	if doc.Ticker != "" {
		title += fmt.Sprintf("（%s）", doc.Ticker)
	}

	body := excerpt(doc.Description, newsBodyBudget)
	if body == "" {
		body = "詳細はリンク先を確認"
	}

	return domain.Message{
		Username:  newsUsername,
		Title:     title,
		Body:      body,
		URL:       doc.DetailURL,
		Color:     color,
		Footer:    strings.ToUpper(doc.Source),
		Timestamp: now.UTC(),
	}
}

// formatMetric renders a metric value with its year-over-year delta, or
// the "N/A" sentinel when the current period is absent.
func formatMetric(m domain.MetricValue) string {
	if m.Current == nil {
		return "N/A"
	}
	out := formatYen(*m.Current)
	if yoy, ok := m.YoY(); ok {
		out += fmt.Sprintf(" (%+.1f%%)", yoy)
	}
	return out
}

// formatYen scales a raw yen amount into the conventional display unit.
func formatYen(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2f兆円", v/1e12)
	case abs >= 1e8:
		return fmt.Sprintf("%.1f億円", v/1e8)
	default:
		return fmt.Sprintf("%.0f万円", v/1e4)
	}
}

// excerpt truncates to a rune budget so multibyte text is never split.
func excerpt(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	return string(runes[:budget])
}

func orUnknown(s string) string {
	if s == "" {
		return "不明"
	}
	return s
}

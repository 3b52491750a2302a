package domain

// MetricLine names one financial statement line the enricher resolves.
type MetricLine string

const (
	LineRevenue           MetricLine = "revenue"
	LineOperatingIncome   MetricLine = "operating_income"
	LinePretaxIncome      MetricLine = "pretax_income"
	LineNetIncome         MetricLine = "net_income"
	LineOperatingCashFlow MetricLine = "operating_cash_flow"
	LineTotalDebt         MetricLine = "total_debt"
)

// MetricLines is the fixed display order for earnings notifications.
var MetricLines = []MetricLine{
	LineRevenue,
	LineOperatingIncome,
	LinePretaxIncome,
	LineNetIncome,
	LineOperatingCashFlow,
	LineTotalDebt,
}

// MetricValue holds the two most recent reported periods for one line.
// A nil pointer means the provider reported no usable value, never zero.
type MetricValue struct {
	Current *float64
	Prior   *float64
}

// YoY returns the year-over-year percentage change. It is undefined when
// either period is absent or the prior period is zero.
func (m MetricValue) YoY() (float64, bool) {
	if m.Current == nil || m.Prior == nil || *m.Prior == 0 {
		return 0, false
	}
	prior := *m.Prior
	if prior < 0 {
		prior = -prior
	}
	return (*m.Current - *m.Prior) / prior * 100, true
}

// Enrichment carries supplementary market data for an earnings document.
type Enrichment struct {
	Company string
	Sector  string
	Period  string
	Metrics map[MetricLine]MetricValue
}

// Metric returns the value for a line, zero-valued when unresolved.
func (e *Enrichment) Metric(line MetricLine) MetricValue {
	if e == nil || e.Metrics == nil {
		return MetricValue{}
	}
	return e.Metrics[line]
}

// Package marketdata looks up supplementary financial metrics for a ticker
// from an EODHD-style fundamentals endpoint.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"DisclosureNotifier/internal/config"
	"DisclosureNotifier/internal/domain"
	"DisclosureNotifier/internal/ports"
)

// Client talks to the market-data provider. Requests are rate-limited and
// every failure surfaces as an "unavailable" error the pipeline tolerates.
type Client struct {
	baseURL string
	apiKey  string
	suffix  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.Enricher = (*Client)(nil)

// NewClient creates a reusable HTTP client for the fundamentals endpoint.
func NewClient(cfg config.MarketDataConfig, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		suffix:  cfg.SymbolSuffix,
		http:    client,
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		logger:  logger,
	}
}

// lineLabels maps each financial line to provider label candidates, tried
// in priority order. The provider is not consistent about which label a
// line appears under, so the first present match wins.
var lineLabels = map[domain.MetricLine][]string{
	domain.LineRevenue:           {"totalRevenue", "revenue", "operatingRevenue"},
	domain.LineOperatingIncome:   {"operatingIncome", "ebit"},
	domain.LinePretaxIncome:      {"incomeBeforeTax", "pretaxIncome"},
	domain.LineNetIncome:         {"netIncome", "netIncomeApplicableToCommonShares", "netIncomeFromContinuingOps"},
	domain.LineOperatingCashFlow: {"totalCashFromOperatingActivities", "operatingCashFlow", "cashFromOperations"},
	domain.LineTotalDebt:         {"shortLongTermDebtTotal", "totalDebt", "longTermDebtTotal"},
}

// lineStatement routes each line to the statement it is reported in.
var lineStatement = map[domain.MetricLine]string{
	domain.LineRevenue:           "income",
	domain.LineOperatingIncome:   "income",
	domain.LinePretaxIncome:      "income",
	domain.LineNetIncome:         "income",
	domain.LineOperatingCashFlow: "cashflow",
	domain.LineTotalDebt:         "balance",
}

// Enrich resolves company metadata and the two most recent periods of each
// financial line for the ticker.
func (c *Client) Enrich(ctx context.Context, ticker string) (*domain.Enrichment, error) {
	if ticker == "" {
		return nil, fmt.Errorf("marketdata: empty ticker")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("marketdata: rate limit wait: %w", err)
	}

	symbol := ticker + c.suffix

	params := url.Values{}
	params.Set("fmt", "json")
	if c.apiKey != "" {
		params.Set("api_token", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s/fundamentals/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("marketdata: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketdata: request fundamentals: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketdata: provider returned %s for %s", resp.Status, symbol)
	}

	var payload fundamentalsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("marketdata: decode fundamentals: %w", err)
	}

	enrichment := &domain.Enrichment{
		Company: payload.General.Name,
		Sector:  payload.General.Sector,
		Metrics: map[domain.MetricLine]domain.MetricValue{},
	}

	statements := map[string][]periodValues{
		"income":   payload.Financials.IncomeStatement.recentPeriods(),
		"balance":  payload.Financials.BalanceSheet.recentPeriods(),
		"cashflow": payload.Financials.CashFlow.recentPeriods(),
	}

	if periods := statements["income"]; len(periods) > 0 {
		enrichment.Period = periods[0].date
	}

	for line, labels := range lineLabels {
		periods := statements[lineStatement[line]]
		enrichment.Metrics[line] = extractMetric(periods, labels)
	}

	c.debug("fundamentals resolved", "symbol", symbol, "company", enrichment.Company)
	return enrichment, nil
}

type fundamentalsResponse struct {
	General struct {
		Name   string `json:"Name"`
		Sector string `json:"Sector"`
	} `json:"General"`
	Financials struct {
		IncomeStatement statement `json:"Income_Statement"`
		BalanceSheet    statement `json:"Balance_Sheet"`
		CashFlow        statement `json:"Cash_Flow"`
	} `json:"Financials"`
}

type statement struct {
	Yearly map[string]map[string]flexNumber `json:"yearly"`
}

type periodValues struct {
	date   string
	values map[string]flexNumber
}

// recentPeriods returns reported periods in descending recency order.
func (s statement) recentPeriods() []periodValues {
	dates := make([]string, 0, len(s.Yearly))
	for date := range s.Yearly {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	periods := make([]periodValues, 0, len(dates))
	for _, date := range dates {
		periods = append(periods, periodValues{date: date, values: s.Yearly[date]})
	}
	return periods
}

// extractMetric takes the first candidate label present in each of the two
// most recent periods. Absent or unparseable values stay nil.
func extractMetric(periods []periodValues, labels []string) domain.MetricValue {
	var metric domain.MetricValue
	for i, period := range periods {
		if i > 1 {
			break
		}
		value := firstLabel(period.values, labels)
		if i == 0 {
			metric.Current = value
		} else {
			metric.Prior = value
		}
	}
	return metric
}

func firstLabel(values map[string]flexNumber, labels []string) *float64 {
	for _, label := range labels {
		if n, ok := values[label]; ok && n.Valid {
			v := n.Value
			return &v
		}
	}
	return nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

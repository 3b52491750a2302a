package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DisclosureNotifier/internal/config"
	"DisclosureNotifier/internal/domain"
)

const fundamentalsBody = `{
  "General": {"Name": "Toyota Motor Corp", "Sector": "Consumer Cyclical"},
  "Financials": {
    "Income_Statement": {
      "yearly": {
        "2026-03-31": {
          "totalRevenue": "48036704000000",
          "operatingIncome": 5352934000000,
          "incomeBeforeTax": "6309825000000",
          "netIncome": "4944933000000"
        },
        "2025-03-31": {
          "revenue": "45095325000000",
          "operatingIncome": 5725235000000,
          "incomeBeforeTax": "N/A",
          "netIncomeApplicableToCommonShares": "4765086000000"
        }
      }
    },
    "Balance_Sheet": {
      "yearly": {
        "2026-03-31": {"shortLongTermDebtTotal": "38792000000000"},
        "2025-03-31": {"totalDebt": null}
      }
    },
    "Cash_Flow": {
      "yearly": {
        "2026-03-31": {},
        "2025-03-31": {"totalCashFromOperatingActivities": "4921000000000"}
      }
    }
  }
}`

func TestEnrichResolvesLabelsAcrossPeriods(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundamentals/7203.T", r.URL.Path)
		assert.Equal(t, "token", r.URL.Query().Get("api_token"))
		_, _ = w.Write([]byte(fundamentalsBody))
	}))
	defer server.Close()

	c := NewClient(config.MarketDataConfig{BaseURL: server.URL, APIKey: "token", SymbolSuffix: ".T"}, server.Client(), nil)

	enc, err := c.Enrich(context.Background(), "7203")
	require.NoError(t, err)

	assert.Equal(t, "Toyota Motor Corp", enc.Company)
	assert.Equal(t, "Consumer Cyclical", enc.Sector)
	assert.Equal(t, "2026-03-31", enc.Period)

	// Primary label in the current period, fallback label in the prior.
	revenue := enc.Metric(domain.LineRevenue)
	require.NotNil(t, revenue.Current)
	require.NotNil(t, revenue.Prior)
	assert.InDelta(t, 4.8036704e13, *revenue.Current, 1)
	assert.InDelta(t, 4.5095325e13, *revenue.Prior, 1)

	yoy, ok := revenue.YoY()
	require.True(t, ok)
	assert.InDelta(t, 6.52, yoy, 0.01)

	// "N/A" prior stays absent, so YoY is undefined.
	pretax := enc.Metric(domain.LinePretaxIncome)
	require.NotNil(t, pretax.Current)
	assert.Nil(t, pretax.Prior)
	_, ok = pretax.YoY()
	assert.False(t, ok)

	// Current period missing entirely from the cash-flow statement.
	cashflow := enc.Metric(domain.LineOperatingCashFlow)
	assert.Nil(t, cashflow.Current)
	require.NotNil(t, cashflow.Prior)

	// null prior stays absent.
	debt := enc.Metric(domain.LineTotalDebt)
	require.NotNil(t, debt.Current)
	assert.Nil(t, debt.Prior)
}

func TestEnrichProviderErrorIsUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(config.MarketDataConfig{BaseURL: server.URL, SymbolSuffix: ".T"}, server.Client(), nil)

	enc, err := c.Enrich(context.Background(), "9999")
	assert.Error(t, err)
	assert.Nil(t, enc)
}

func TestEnrichEmptyTickerIsUnavailable(t *testing.T) {
	t.Parallel()

	c := NewClient(config.MarketDataConfig{BaseURL: "http://localhost:0"}, nil, nil)

	_, err := c.Enrich(context.Background(), "")
	assert.Error(t, err)
}

func TestEnrichMissingLinesStayAbsent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"General": {"Name": "Shell Co"}, "Financials": {}}`))
	}))
	defer server.Close()

	c := NewClient(config.MarketDataConfig{BaseURL: server.URL}, server.Client(), nil)

	enc, err := c.Enrich(context.Background(), "4755")
	require.NoError(t, err)
	assert.Equal(t, "Shell Co", enc.Company)

	for _, line := range domain.MetricLines {
		metric := enc.Metric(line)
		assert.Nil(t, metric.Current, "line %s", line)
		assert.Nil(t, metric.Prior, "line %s", line)
	}
}

func TestMetricYoYUndefinedOnZeroPrior(t *testing.T) {
	t.Parallel()

	zero, current := 0.0, 100.0
	m := domain.MetricValue{Current: &current, Prior: &zero}
	_, ok := m.YoY()
	assert.False(t, ok)
}

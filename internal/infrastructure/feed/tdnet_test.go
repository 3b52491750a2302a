package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DisclosureNotifier/internal/config"
)

const tdnetRow = `
<tr>
  <td class="kjTime">%s</td>
  <td class="kjCode">%s</td>
  <td class="kjName">%s</td>
  <td class="kjTitle"><a href="%s">%s</a></td>
</tr>`

func tdnetPage(rows ...string) string {
	page := "<html><body><table>"
	for _, r := range rows {
		page += r
	}
	return page + "</table></body></html>"
}

func TestTDnetFetchMergesTwoDays(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.August, 28, 16, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/list_20260828.html":
			_, _ = w.Write([]byte(tdnetPage(
				fmt.Sprintf(tdnetRow, "15:30", "72030", "トヨタ自動車", "/pdf/140120260828501234.pdf", "2027年3月期 第1四半期決算短信"),
				fmt.Sprintf(tdnetRow, "15:00", "99840", "ソフトバンクグループ", "/pdf/140120260828505678.pdf", "業績予想の修正に関するお知らせ"),
			)))
		case "/list_20260827.html":
			_, _ = w.Write([]byte(tdnetPage(
				// Same document visible in yesterday's rolling window.
				fmt.Sprintf(tdnetRow, "15:00", "99840", "ソフトバンクグループ", "/pdf/140120260828505678.pdf", "業績予想の修正に関するお知らせ"),
				fmt.Sprintf(tdnetRow, "09:00", "67580", "ソニーグループ", "/pdf/140120260827509999.pdf", "剰余金の配当に関するお知らせ"),
			)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	src := NewTDnetSource(config.TDnetConfig{ListURL: server.URL + "/list_{date}.html"}, server.Client(), nil)

	docs, err := src.Fetch(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "140120260828501234", docs[0].SourceID)
	assert.Equal(t, "tdnet_140120260828501234", docs[0].Key())
	assert.Equal(t, "7203", docs[0].Ticker)
	assert.Equal(t, "トヨタ自動車", docs[0].FilerName)
	assert.Equal(t, "2027年3月期 第1四半期決算短信", docs[0].Description)
	assert.Equal(t, server.URL+"/pdf/140120260828501234.pdf", docs[0].DetailURL)
	assert.Equal(t, "15:30", docs[0].PublishedAt)

	// The overlapping row appears once.
	ids := []string{docs[0].SourceID, docs[1].SourceID, docs[2].SourceID}
	assert.ElementsMatch(t, ids, []string{"140120260828501234", "140120260828505678", "140120260827509999"})
}

func TestTDnetFetchMissingDayPagesYieldNothing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	src := NewTDnetSource(config.TDnetConfig{ListURL: server.URL + "/list_{date}.html"}, server.Client(), nil)

	docs, err := src.Fetch(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestTDnetFetchServerErrorIsSoftError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src := NewTDnetSource(config.TDnetConfig{ListURL: server.URL + "/list_{date}.html"}, server.Client(), nil)

	_, err := src.Fetch(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestTDnetRowWithoutLinkFallsBackToDateCode(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, time.August, 28, 16, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list_20260828.html" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(tdnetPage(`
<tr>
  <td class="kjTime">10:00</td>
  <td class="kjCode">72030</td>
  <td class="kjName">トヨタ自動車</td>
  <td class="kjTitle">リンクのない開示</td>
</tr>`)))
	}))
	defer server.Close()

	src := NewTDnetSource(config.TDnetConfig{ListURL: server.URL + "/list_{date}.html"}, server.Client(), nil)

	docs, err := src.Fetch(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "20260828_72030", docs[0].SourceID)
	assert.Equal(t, "", docs[0].DetailURL)
}

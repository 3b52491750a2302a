package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"DisclosureNotifier/internal/config"
	"DisclosureNotifier/internal/domain"
	"DisclosureNotifier/internal/ports"
	"DisclosureNotifier/internal/source"
)

const edinetViewerURL = "https://disclosure2.edinet-fsa.go.jp/WZEK0040.aspx?S1"

// EDINETSource fetches the regulatory filings listing for a calendar date.
// Publication has business-day gaps, so Fetch walks backwards from the
// requested day until a non-empty listing is found or the lookback window
// is exhausted.
type EDINETSource struct {
	baseURL  string
	apiKey   string
	lookback int
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.DocumentSource = (*EDINETSource)(nil)

// NewEDINETSource wires an HTTP client; lookback defaults to 5 days.
func NewEDINETSource(cfg config.EDINETConfig, client *http.Client, logger *slog.Logger) *EDINETSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = 5
	}
	return &EDINETSource{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		lookback: lookback,
		client:   client,
		logger:   logger,
	}
}

// Name identifies the adapter inside the registry and the document key.
func (s *EDINETSource) Name() string {
	return "edinet"
}

// Fetch returns the newest non-empty day's documents within the lookback
// window. Upstream unavailability on every attempted day is the only error
// case; a quiet window yields an empty result.
func (s *EDINETSource) Fetch(ctx context.Context, day time.Time) ([]domain.Document, error) {
	var lastErr error
	for i := 0; i < s.lookback; i++ {
		target := day.AddDate(0, 0, -i)
		raw, err := s.fetchDay(ctx, target)
		if err != nil {
			lastErr = err
			s.debug("edinet day failed", "date", target.Format("2006-01-02"), "error", err)
			continue
		}
		if len(raw) == 0 {
			continue
		}
		s.debug("edinet day used", "date", target.Format("2006-01-02"), "documents", len(raw))
		return s.normalize(raw), nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("edinet: no reachable day in %d-day window: %w", s.lookback, lastErr)
	}
	return nil, nil
}

// edinetDocument mirrors the fields consumed from the documents listing.
type edinetDocument struct {
	DocID          string `json:"docID"`
	DocDescription string `json:"docDescription"`
	FilerName      string `json:"filerName"`
	SecCode        string `json:"secCode"`
	PeriodEnd      string `json:"periodEnd"`
	SubmitDateTime string `json:"submitDateTime"`
}

func (s *EDINETSource) fetchDay(ctx context.Context, day time.Time) ([]edinetDocument, error) {
	// type=2 requires a subscription key and returns the richer tier.
	docType := "1"
	if s.apiKey != "" {
		docType = "2"
	}

	params := url.Values{}
	params.Set("date", day.Format("2006-01-02"))
	params.Set("type", docType)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/documents.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request documents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edinet returned %s", resp.Status)
	}

	var payload struct {
		Results []edinetDocument `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	return payload.Results, nil
}

func (s *EDINETSource) normalize(raw []edinetDocument) []domain.Document {
	results := make([]domain.Document, 0, len(raw))
	seen := map[string]struct{}{}

	for _, doc := range raw {
		if doc.DocID == "" {
			s.debug("edinet record without docID skipped", "filer", doc.FilerName)
			continue
		}
		if _, ok := seen[doc.DocID]; ok {
			continue
		}
		seen[doc.DocID] = struct{}{}

		results = append(results, domain.Document{
			SourceID:    doc.DocID,
			Source:      s.Name(),
			Description: doc.DocDescription,
			FilerName:   doc.FilerName,
			Ticker:      source.NormalizeSecCode(doc.SecCode),
			PeriodEnd:   doc.PeriodEnd,
			PublishedAt: doc.SubmitDateTime,
			DetailURL:   edinetViewerURL + doc.DocID,
		})
	}

	return results
}

func (s *EDINETSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

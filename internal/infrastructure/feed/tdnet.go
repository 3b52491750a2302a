package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DisclosureNotifier/internal/config"
	"DisclosureNotifier/internal/domain"
	"DisclosureNotifier/internal/ports"
	"DisclosureNotifier/internal/source"
)

// TDnetSource scrapes the timely-disclosure HTML listing. The listing is a
// rolling window, so Fetch merges the requested day with the previous one
// to cover documents published around midnight and weekend gaps.
type TDnetSource struct {
	listURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.DocumentSource = (*TDnetSource)(nil)

// NewTDnetSource wires an HTTP client. listURL must contain a {date}
// placeholder replaced with YYYYMMDD per request.
func NewTDnetSource(cfg config.TDnetConfig, client *http.Client, logger *slog.Logger) *TDnetSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &TDnetSource{
		listURL: cfg.ListURL,
		client:  client,
		logger:  logger,
	}
}

// Name identifies the adapter inside the registry and the document key.
func (s *TDnetSource) Name() string {
	return "tdnet"
}

// Fetch merges today's and yesterday's listings. A day whose page is
// missing (404 on weekends/holidays) contributes nothing; both days
// unreachable for other reasons is reported as an error.
func (s *TDnetSource) Fetch(ctx context.Context, day time.Time) ([]domain.Document, error) {
	var (
		results []domain.Document
		seen    = map[string]struct{}{}
		lastErr error
		fetched int
	)

	for _, target := range []time.Time{day, day.AddDate(0, 0, -1)} {
		docs, err := s.fetchDay(ctx, target)
		if err != nil {
			lastErr = err
			s.debug("tdnet day failed", "date", target.Format("20060102"), "error", err)
			continue
		}
		fetched++
		for _, doc := range docs {
			if _, ok := seen[doc.SourceID]; ok {
				continue
			}
			seen[doc.SourceID] = struct{}{}
			results = append(results, doc)
		}
	}

	if fetched == 0 && lastErr != nil {
		return nil, fmt.Errorf("tdnet: listing unreachable: %w", lastErr)
	}
	return results, nil
}

func (s *TDnetSource) fetchDay(ctx context.Context, day time.Time) ([]domain.Document, error) {
	pageURL := strings.ReplaceAll(s.listURL, "{date}", day.Format("20060102"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "DisclosureNotifier/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No listing published for this day.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tdnet returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	return s.extract(doc, pageURL, day), nil
}

func (s *TDnetSource) extract(page *goquery.Document, pageURL string, day time.Time) []domain.Document {
	var results []domain.Document

	page.Find("tr").Each(func(_ int, row *goquery.Selection) {
		code := strings.TrimSpace(row.Find("td.kjCode").First().Text())
		name := strings.TrimSpace(row.Find("td.kjName").First().Text())
		titleCell := row.Find("td.kjTitle").First()
		title := strings.TrimSpace(titleCell.Text())
		announced := strings.TrimSpace(row.Find("td.kjTime").First().Text())

		if code == "" || title == "" {
			return
		}

		href, _ := titleCell.Find("a").First().Attr("href")
		link := resolveLink(pageURL, href)

		id := documentID(href, day, code)
		if id == "" {
			s.debug("tdnet row without usable id skipped", "code", code, "title", title)
			return
		}

		results = append(results, domain.Document{
			SourceID:    id,
			Source:      s.Name(),
			Description: title,
			FilerName:   name,
			Ticker:      source.NormalizeSecCode(code),
			PublishedAt: announced,
			DetailURL:   link,
		})
	})

	return results
}

// documentID prefers the disclosure file name (stable across re-polls of
// overlapping windows); rows without a link fall back to date+code.
func documentID(href string, day time.Time, code string) string {
	if href != "" {
		base := path.Base(href)
		if ext := path.Ext(base); ext != "" {
			base = strings.TrimSuffix(base, ext)
		}
		if base != "" && base != "." && base != "/" {
			return base
		}
	}
	if code == "" {
		return ""
	}
	return day.Format("20060102") + "_" + code
}

func resolveLink(pageURL, href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func (s *TDnetSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"DisclosureNotifier/internal/domain"
	"DisclosureNotifier/internal/notify"
	"DisclosureNotifier/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Sources  []ports.DocumentSource
	Classify ports.Classifier
	Ledger   ports.Ledger
	Enricher ports.Enricher
	Earnings ports.Notifier
	News     ports.Notifier
	History  ports.DeliveryStore
	Logger   *slog.Logger
	Now      func() time.Time
}

// Pipeline implements the ingest, classify, dedupe, enrich and deliver
// workflow for one run. No per-document error aborts the run; the ledger
// is persisted once at the end.
type Pipeline struct {
	sources  []ports.DocumentSource
	classify ports.Classifier
	ledger   ports.Ledger
	enricher ports.Enricher
	earnings ports.Notifier
	news     ports.Notifier
	history  ports.DeliveryStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		sources:  deps.Sources,
		classify: deps.Classify,
		ledger:   deps.Ledger,
		enricher: deps.Enricher,
		earnings: deps.Earnings,
		news:     deps.News,
		history:  deps.History,
		logger:   logger,
		now:      now,
	}
}

// Run executes one pipeline invocation for the given day.
func (p *Pipeline) Run(ctx context.Context, day time.Time) error {
	if p.classify == nil || p.ledger == nil {
		return fmt.Errorf("pipeline missing classifier or ledger")
	}

	log := p.logger.With("run_id", uuid.NewString())
	log.Info("run started", "day", day.Format("2006-01-02"), "ledger_size", p.ledger.Len())

	docs := p.poll(ctx, log, day)

	tally := map[domain.Category]int{}
	delivered := 0

	for _, doc := range docs {
		if doc.SourceID == "" {
			log.Debug("record without source id skipped", "source", doc.Source)
			continue
		}

		key := doc.Key()
		if p.ledger.Contains(key) {
			continue
		}

		category := p.classify.Classify(doc.Description)
		tally[category]++
		if category == domain.CategoryIgnore {
			continue
		}

		if p.dispatch(ctx, log, doc, category) {
			p.ledger.Add(key)
			delivered++
		}
	}

	log.Info("run finished", "documents", len(docs), "delivered", delivered, "classified", tallySummary(tally))

	if err := p.ledger.Persist(); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// poll fetches every source in priority order. An unavailable source is
// logged and skipped; the run continues with the others.
func (p *Pipeline) poll(ctx context.Context, log *slog.Logger, day time.Time) []domain.Document {
	var docs []domain.Document
	for _, src := range p.sources {
		fetched, err := src.Fetch(ctx, day)
		if err != nil {
			log.Warn("source unavailable, skipping", "source", src.Name(), "error", err)
			continue
		}
		log.Debug("source fetched", "source", src.Name(), "documents", len(fetched))
		docs = append(docs, fetched...)
	}
	return docs
}

// dispatch routes one document to its channel and reports whether it was
// actually delivered (and may therefore enter the ledger).
func (p *Pipeline) dispatch(ctx context.Context, log *slog.Logger, doc domain.Document, category domain.Category) bool {
	var (
		msg     domain.Message
		target  ports.Notifier
		channel string
	)

	if category == domain.CategoryEarnings {
		var enc *domain.Enrichment
		if doc.Ticker != "" && p.enricher != nil {
			var err error
			enc, err = p.enricher.Enrich(ctx, doc.Ticker)
			if err != nil {
				log.Warn("enrichment unavailable, delivering without metrics",
					"ticker", doc.Ticker, "error", err)
				enc = nil
			}
		}
		msg = notify.BuildEarnings(doc, enc, p.now())
		target = p.earnings
		channel = "earnings"
	} else {
		msg = notify.BuildNews(doc, category, p.now())
		target = p.news
		channel = "news"
	}

	if target == nil {
		log.Warn("no notifier configured for channel", "channel", channel)
		return false
	}

	result, err := target.Deliver(ctx, msg)
	if err != nil || result == domain.DeliveryFailed {
		log.Warn("delivery failed, will retry next run",
			"channel", channel, "key", doc.Key(), "result", result, "error", err)
		return false
	}
	if result == domain.DeliverySkipped {
		return false
	}

	log.Info("delivered", "channel", channel, "category", category,
		"filer", doc.FilerName, "key", doc.Key(), "result", result)

	p.audit(ctx, log, doc, category, channel)
	return true
}

func (p *Pipeline) audit(ctx context.Context, log *slog.Logger, doc domain.Document, category domain.Category, channel string) {
	if p.history == nil {
		return
	}
	err := p.history.SaveDelivered(ctx, domain.DeliveredRecord{
		DocumentKey: doc.Key(),
		FilerName:   doc.FilerName,
		Category:    category,
		Channel:     channel,
		DeliveredAt: p.now(),
	})
	if err != nil {
		log.Warn("history store write failed", "key", doc.Key(), "error", err)
	}
}

// tallySummary renders the per-category classification counts for the
// run-summary log line.
func tallySummary(tally map[domain.Category]int) string {
	var b strings.Builder
	for _, cat := range []domain.Category{
		domain.CategoryEarnings,
		domain.CategoryGuidanceRevision,
		domain.CategoryRegulatoryEvent,
		domain.CategoryAnnualReport,
		domain.CategorySectorNews,
		domain.CategoryIgnore,
	} {
		n, ok := tally[cat]
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s=%d", cat, n)
	}
	if b.Len() == 0 {
		return "none"
	}
	return b.String()
}

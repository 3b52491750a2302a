// Package discord delivers formatted messages to Discord webhook channels.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"DisclosureNotifier/internal/domain"
	"DisclosureNotifier/internal/ports"
)

const defaultCooldown = 5 * time.Second

// Notifier posts embeds to one webhook URL. Posts are paced to at most one
// per interval so the destination's global rate limit is respected even
// when documents arrive in a burst. On HTTP 429 it waits the advertised
// cooldown and retries exactly once.
type Notifier struct {
	channel string
	webhook string
	client  *http.Client
	limiter *rate.Limiter
	sleep   func(time.Duration)
	logger  *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier wires a webhook destination with 1s minimum inter-post spacing.
func NewNotifier(channel, webhook string, logger *slog.Logger) *Notifier {
	return &Notifier{
		channel: channel,
		webhook: webhook,
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		sleep:   time.Sleep,
		logger:  logger,
	}
}

// Deliver posts the message. A missing webhook is a warned no-op; any
// non-recoverable response is reported as a failed (non-fatal) delivery.
func (n *Notifier) Deliver(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error) {
	if n.webhook == "" {
		n.warn("webhook URL is empty, skipping delivery", "channel", n.channel)
		return domain.DeliverySkipped, nil
	}

	body, err := json.Marshal(toWirePayload(msg))
	if err != nil {
		return domain.DeliveryFailed, fmt.Errorf("marshal payload: %w", err)
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return domain.DeliveryFailed, fmt.Errorf("pace wait: %w", err)
	}

	status, retryAfter, err := n.post(ctx, body)
	if err != nil {
		return domain.DeliveryFailed, err
	}

	if status == http.StatusTooManyRequests {
		n.warn("rate limited, retrying once", "channel", n.channel, "cooldown", retryAfter)
		n.sleep(retryAfter)

		status, _, err = n.post(ctx, body)
		if err != nil {
			return domain.DeliveryFailed, err
		}
		if status == http.StatusTooManyRequests {
			return domain.DeliveryFailed, fmt.Errorf("rate limited twice on %s channel", n.channel)
		}
		if !success(status) {
			return domain.DeliveryFailed, fmt.Errorf("webhook returned %d on retry", status)
		}
		return domain.DeliveryRetried, nil
	}

	if !success(status) {
		return domain.DeliveryFailed, fmt.Errorf("webhook returned %d", status)
	}
	return domain.DeliveryDelivered, nil
}

func (n *Notifier) post(ctx context.Context, body []byte) (status int, retryAfter time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhook, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusTooManyRequests {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		n.warn("webhook error response",
			"channel", n.channel,
			"status", resp.Status,
			"body", strings.TrimSpace(string(payload)))
	}

	return resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}

func (n *Notifier) warn(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}

func success(status int) bool {
	return status >= 200 && status < 300
}

// parseRetryAfter reads the cooldown in seconds; Discord may send a float.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultCooldown
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || secs < 0 {
		return defaultCooldown
	}
	return time.Duration(secs * float64(time.Second))
}

package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/seenimoa/edgarwatch/internal/infra"
	"github.com/seenimoa/edgarwatch/pkg/models"
)

// RiskAlertAbove is the narrative risk score above which a result is always notified.
const RiskAlertAbove = 70

const defaultWebhookTimeout = 10 * time.Second

// Notifier decides whether a result is worth a notification and sends it.
type Notifier interface {
	// Notify reports whether a notification was sent.
	Notify(ctx context.Context, r models.Result) (bool, error)
}

// ShouldNotify is the alerting policy. A result is notified when there was
// no baseline to compare against, when its severity is significant or
// critical, or when its narrative risk score exceeds RiskAlertAbove.
func ShouldNotify(r models.Result) bool {
	cd := r.ChangeDetection
	if !cd.HasBaseline {
		return true
	}
	if cd.Severity.IsMaterial() {
		return true
	}
	return r.AIAnalysis != nil && r.AIAnalysis.RiskScore.Overall > RiskAlertAbove
}

// Webhook posts results as JSON to a URL.
type Webhook struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhook creates a webhook notifier. Extra headers are sent with every request.
func NewWebhook(url string, headers map[string]string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	return &Webhook{url: url, headers: h, client: &http.Client{Timeout: timeout}}
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, r models.Result) (bool, error) {
	if !ShouldNotify(r) {
		return false, nil
	}
	body, err := json.Marshal(r)
	if err != nil {
		return false, fmt.Errorf("encode webhook payload: %w", err)
	}
	if _, err := infra.DoPost(ctx, w.client, w.url, body, w.headers); err != nil {
		return false, fmt.Errorf("webhook %s: %w", r.Filing.AccessionNumber, err)
	}
	return true, nil
}

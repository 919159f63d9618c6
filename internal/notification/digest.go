package notification

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	alertdomain "github.com/pharmacore/pharmacy-api/internal/alert/domain"
	"github.com/pharmacore/pharmacy-api/internal/notification/telegram"
)

// DigestWindow is the trailing period a digest summarizes
const DigestWindow = 24 * time.Hour

// DigestBuilder renders the daily alert summary. Read-only: building a
// digest never resolves or mutates alerts.
type DigestBuilder struct {
	alerts alertdomain.Repository
	now    func() time.Time
}

// NewDigestBuilder creates a digest builder
func NewDigestBuilder(alerts alertdomain.Repository) *DigestBuilder {
	return &DigestBuilder{alerts: alerts, now: time.Now}
}

// Build renders the digest message for unresolved alerts created in the
// trailing window and returns it with the alert count. An empty window
// yields a short all-clear message.
func (b *DigestBuilder) Build(ctx context.Context) (string, int, error) {
	since := b.now().Add(-DigestWindow)
	alerts, err := b.alerts.UnresolvedSince(ctx, since)
	if err != nil {
		return "", 0, err
	}

	if len(alerts) == 0 {
		return "📋 <b>Daily Alert Digest</b>\n\nNo unresolved alerts in the last 24 hours.", 0, nil
	}

	bySeverity := map[string]int{}
	byType := map[string]int{}
	for _, a := range alerts {
		bySeverity[a.Severity]++
		byType[a.AlertType]++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Daily Alert Digest</b>\n\n%d unresolved alerts in the last 24 hours.\n", len(alerts))

	sb.WriteString("\n<b>By severity:</b>\n")
	for _, sev := range []string{alertdomain.SeverityCritical, alertdomain.SeverityHigh, alertdomain.SeverityMedium, alertdomain.SeverityLow} {
		if n := bySeverity[sev]; n > 0 {
			fmt.Fprintf(&sb, "%s %s: %d\n", telegram.SeverityEmoji(sev), sev, n)
		}
	}

	sb.WriteString("\n<b>By type:</b>\n")
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&sb, "%s: %d\n", t, byType[t])
	}

	return sb.String(), len(alerts), nil
}

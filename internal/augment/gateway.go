package augment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/model"
)

// Result is what augmentation produced for a query.
type Result struct {
	Answer     string
	Confidence float64
	Sources    []string
	// NewKnowledge is a suggested entry parsed out of the reply, confidence
	// already clamped into the minted band. Nil when none was offered.
	NewKnowledge *model.KnowledgeEntry
	// Degraded is true when the deterministic fallback answered.
	Degraded bool
}

// Fallback answer confidences.
const (
	confidenceDegraded  = 0.25
	confidenceAugmented = 0.7
	confidenceWithFacts = 0.8
)

// Gateway wraps the external service with timeout, retry and fallback
// behavior. Augment never returns an error: the pipeline always gets some
// answer back.
type Gateway struct {
	svc     Service
	tun     config.Tunables
	timeout time.Duration
}

// NewGateway creates a Gateway.
func NewGateway(svc Service, cfg config.Augment, tun config.Tunables) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Gateway{svc: svc, tun: tun, timeout: timeout}
}

// Augment answers a query the local knowledge could not. entries carries
// whatever weak local knowledge exists, pattern the selected reasoning
// pattern, history the recent turns; all three only shape the prompt.
func (g *Gateway) Augment(ctx context.Context, query string, entries []model.KnowledgeEntry, pattern *model.ReasoningPattern, history []model.Turn) Result {
	if g.svc == nil || !g.svc.IsAvailable() {
		return g.fallback(query)
	}

	knowledgeContext := buildContext(entries, pattern, history)

	text, err := g.callWithRetry(ctx, query, knowledgeContext)
	if err != nil {
		slog.Warn("augmentation: service call failed, using fallback", "err", err)
		return g.fallback(query)
	}

	answer, entry, perr := ExtractKnowledgeBlock(text)
	if perr != nil {
		// Malformed structure is discarded, never retried; the answer text
		// minus the structured suffix is still usable.
		slog.Warn("augmentation: discarding malformed knowledge block", "err", perr)
		entry = nil
	}

	res := Result{Answer: answer, Confidence: confidenceAugmented}
	if entry != nil {
		entry.Confidence = clampMinted(entry.Confidence, g.tun)
		entry.Source = model.KnowledgeSourceAugmentation
		res.NewKnowledge = entry
		res.Confidence = confidenceWithFacts
		res.Sources = []string{entry.Topic}
	}
	for _, e := range entries {
		res.Sources = append(res.Sources, e.Topic)
	}
	return res
}

// callWithRetry performs the service call under the configured timeout,
// retrying exactly once on deadline expiry. The call is idempotent from our
// perspective, so a single retry is safe.
func (g *Gateway) callWithRetry(ctx context.Context, query, knowledgeContext string) (string, error) {
	for attempt := 0; ; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		text, err := g.svc.Answer(callCtx, query, knowledgeContext)
		cancel()
		if err == nil {
			return text, nil
		}
		if attempt == 0 && errors.Is(err, context.DeadlineExceeded) {
			slog.Debug("augmentation: timeout, retrying once")
			continue
		}
		return "", err
	}
}

// clampMinted forces a service-reported confidence into the minted band.
// The service's certainty is never auto-accepted above the band's ceiling.
func clampMinted(c int, tun config.Tunables) int {
	if c < tun.MintedMinConf {
		return tun.MintedMinConf
	}
	if c > tun.MintedMaxConf {
		return tun.MintedMaxConf
	}
	return c
}

func buildContext(entries []model.KnowledgeEntry, pattern *model.ReasoningPattern, history []model.Turn) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("- %s: %s (confidence %d)\n", e.Topic, e.Information, e.Confidence))
	}
	if pattern != nil && len(pattern.Rules) > 0 {
		sb.WriteString("Answer style rules:\n")
		for _, r := range pattern.Rules {
			sb.WriteString("- " + r + "\n")
		}
	}
	if len(history) > 0 {
		sb.WriteString("Recent conversation:\n")
		for _, t := range history {
			sb.WriteString(fmt.Sprintf("Q: %s\nA: %s\n", t.Question, t.Answer))
		}
	}
	return sb.String()
}

// fallback returns the deterministic keyword-triggered canned answer. It
// exists so an unreachable or unconfigured service still yields a response.
func (g *Gateway) fallback(query string) Result {
	q := strings.ToLower(query)
	answer := fallbackDefault
	for _, rule := range fallbackRules {
		if strings.Contains(q, rule.keyword) {
			answer = rule.answer
			break
		}
	}
	return Result{Answer: answer, Confidence: confidenceDegraded, Sources: []string{}, Degraded: true}
}

// fallbackRules are evaluated in order; the first keyword hit wins.
var fallbackRules = []struct {
	keyword string
	answer  string
}{
	{"kyc", "KYC verification requires a government-issued identity document. You can upload one from your account's verification page."},
	{"verif", "You can check and complete identity verification from your account's verification page."},
	{"mining", "Mining runs continuously while your account is active; your mining rate and accumulated rewards are shown on your dashboard."},
	{"token", "Tokens are the platform's internal currency, earned through mining and spendable in the marketplace."},
	{"marketplace", "The marketplace lists items offered by other users; you can browse categories or search for specific items."},
	{"buy", "You can purchase listed items in the marketplace using your token balance."},
}

const fallbackDefault = "I don't have enough information to answer that right now. Please try rephrasing, or ask about mining, tokens, the marketplace, or verification."

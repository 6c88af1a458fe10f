package cost

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// CreditChecker reports an external provider's remaining credit balance.
// firecrawl.Client satisfies it.
type CreditChecker interface {
	CreditUsage(ctx context.Context) (int, error)
}

// Ledger accumulates token usage, model cost, and external credit snapshots
// across one run. Every delegated call reports into the same ledger; it is
// safe for concurrent writers.
type Ledger struct {
	mu           sync.Mutex
	rates        Rates
	inputTokens  int64
	outputTokens int64
	totalCost    float64
	creditsStart *int
	creditsEnd   *int
}

// NewLedger creates an empty ledger priced with the given rates.
func NewLedger(rates Rates) *Ledger {
	return &Ledger{rates: rates}
}

// TrackUsage records one call's token counts and accrues its cost. Unknown
// models still have their usage counted, but accrue no cost.
func (l *Ledger) TrackUsage(model string, inputTokens, outputTokens int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.inputTokens += int64(inputTokens)
	l.outputTokens += int64(outputTokens)

	rate, ok := l.rates.Models[model]
	if !ok {
		zap.L().Warn("cost: no pricing for model, usage counted without cost",
			zap.String("model", model))
		return
	}

	callCost := rate.Cost(inputTokens, outputTokens)
	l.totalCost += callCost
	zap.L().Debug("cost: tracked usage",
		zap.String("model", model),
		zap.Int("input_tokens", inputTokens),
		zap.Int("output_tokens", outputTokens),
		zap.Float64("cost_usd", callCost),
	)
}

// StartRun snapshots the provider's remaining credits at run start.
// Best-effort: a nil checker or a failed lookup leaves the snapshot unset.
func (l *Ledger) StartRun(ctx context.Context, checker CreditChecker) {
	credits, ok := snapshot(ctx, checker)
	if !ok {
		return
	}
	l.mu.Lock()
	l.creditsStart = &credits
	l.mu.Unlock()
	zap.L().Info("cost: starting credits", zap.Int("remaining", credits))
}

// EndRun snapshots the provider's remaining credits at run end. Best-effort,
// like StartRun.
func (l *Ledger) EndRun(ctx context.Context, checker CreditChecker) {
	credits, ok := snapshot(ctx, checker)
	if !ok {
		return
	}
	l.mu.Lock()
	l.creditsEnd = &credits
	l.mu.Unlock()
	zap.L().Info("cost: ending credits", zap.Int("remaining", credits))
}

func snapshot(ctx context.Context, checker CreditChecker) (int, bool) {
	if checker == nil {
		zap.L().Warn("cost: no credit checker configured, skipping snapshot")
		return 0, false
	}
	credits, err := checker.CreditUsage(ctx)
	if err != nil {
		zap.L().Warn("cost: credit snapshot failed", zap.Error(err))
		return 0, false
	}
	return credits, true
}

// TokenUsage returns the accumulated input and output token counts.
func (l *Ledger) TokenUsage() (input, output int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inputTokens, l.outputTokens
}

// TotalCost returns the accumulated model cost in USD.
func (l *Ledger) TotalCost() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalCost
}

// CreditsUsed returns the credits consumed between the run snapshots. The
// second return is false unless both snapshots were taken.
func (l *Ledger) CreditsUsed() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.creditsStart == nil || l.creditsEnd == nil {
		return 0, false
	}
	return *l.creditsStart - *l.creditsEnd, true
}

// Summary renders the deterministic run report. Idempotent and
// side-effect-free; safe to call any number of times.
func (l *Ledger) Summary() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	b.WriteString("--- Cost and Usage Summary ---\n")
	fmt.Fprintf(&b, "Total Input Tokens: %d\n", l.inputTokens)
	fmt.Fprintf(&b, "Total Output Tokens: %d\n", l.outputTokens)
	fmt.Fprintf(&b, "Estimated Model Cost: $%.6f\n", l.totalCost)
	if l.creditsStart != nil && l.creditsEnd != nil {
		fmt.Fprintf(&b, "Firecrawl Credits Used: %d\n", *l.creditsStart-*l.creditsEnd)
	}
	b.WriteString("------------------------------\n")
	return b.String()
}

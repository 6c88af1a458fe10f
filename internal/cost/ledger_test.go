package cost

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeChecker struct {
	credits int
	err     error
	calls   int
}

func (f *fakeChecker) CreditUsage(_ context.Context) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	c := f.credits
	f.credits -= 10
	return c, nil
}

func TestLedgerTrackUsage(t *testing.T) {
	t.Parallel()

	t.Run("accumulates tokens and cost", func(t *testing.T) {
		t.Parallel()
		l := NewLedger(DefaultRates())
		l.TrackUsage("gemini-1.5-flash-latest", 1000000, 100000)
		l.TrackUsage("gemini-1.5-flash-latest", 1000000, 100000)

		in, out := l.TokenUsage()
		assert.Equal(t, int64(2000000), in)
		assert.Equal(t, int64(200000), out)
		assert.InDelta(t, 2*(0.35+0.105), l.TotalCost(), 0.000001)
	})

	t.Run("unknown model counts usage without cost", func(t *testing.T) {
		t.Parallel()
		l := NewLedger(DefaultRates())
		l.TrackUsage("mystery-model-9000", 5000, 1000)

		in, out := l.TokenUsage()
		assert.Equal(t, int64(5000), in)
		assert.Equal(t, int64(1000), out)
		assert.Zero(t, l.TotalCost())
	})

	t.Run("tiered pricing applied per call", func(t *testing.T) {
		t.Parallel()
		l := NewLedger(DefaultRates())
		l.TrackUsage("gemini-1.5-pro-latest", 300000, 10000)
		assert.InDelta(t, 0.375+0.075, l.TotalCost(), 0.000001)
	})

	t.Run("safe for concurrent writers", func(t *testing.T) {
		t.Parallel()
		l := NewLedger(DefaultRates())
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.TrackUsage("gemini-1.5-flash-latest", 100, 10)
			}()
		}
		wg.Wait()

		in, out := l.TokenUsage()
		assert.Equal(t, int64(5000), in)
		assert.Equal(t, int64(500), out)
	})
}

func TestLedgerCreditSnapshots(t *testing.T) {
	t.Parallel()

	t.Run("records credits used across the run", func(t *testing.T) {
		t.Parallel()
		l := NewLedger(DefaultRates())
		checker := &fakeChecker{credits: 1000}

		l.StartRun(context.Background(), checker)
		l.EndRun(context.Background(), checker)

		used, ok := l.CreditsUsed()
		assert.True(t, ok)
		assert.Equal(t, 10, used)
		assert.Equal(t, 2, checker.calls)
	})

	t.Run("nil checker degrades to unknown", func(t *testing.T) {
		t.Parallel()
		l := NewLedger(DefaultRates())
		l.StartRun(context.Background(), nil)
		l.EndRun(context.Background(), nil)

		_, ok := l.CreditsUsed()
		assert.False(t, ok)
	})

	t.Run("checker failure degrades to unknown", func(t *testing.T) {
		t.Parallel()
		l := NewLedger(DefaultRates())
		l.StartRun(context.Background(), &fakeChecker{err: errors.New("network down")})

		_, ok := l.CreditsUsed()
		assert.False(t, ok)
	})
}

func TestLedgerSummary(t *testing.T) {
	t.Parallel()

	t.Run("idempotent and deterministic", func(t *testing.T) {
		t.Parallel()
		l := NewLedger(DefaultRates())
		l.TrackUsage("gemini-1.5-flash-latest", 12345, 678)

		first := l.Summary()
		second := l.Summary()
		assert.Equal(t, first, second)
		assert.Contains(t, first, "Total Input Tokens: 12345")
		assert.Contains(t, first, "Total Output Tokens: 678")
		assert.Contains(t, first, "Estimated Model Cost: $")
	})

	t.Run("includes credits only with both snapshots", func(t *testing.T) {
		t.Parallel()
		l := NewLedger(DefaultRates())
		assert.NotContains(t, l.Summary(), "Firecrawl Credits Used")

		checker := &fakeChecker{credits: 500}
		l.StartRun(context.Background(), checker)
		assert.NotContains(t, l.Summary(), "Firecrawl Credits Used")

		l.EndRun(context.Background(), checker)
		assert.Contains(t, l.Summary(), "Firecrawl Credits Used: 10")
	})
}

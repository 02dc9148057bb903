package insights

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/cache"
)

type fakeSummarizer struct {
	calls   atomic.Int32
	release chan struct{}
	started chan struct{}
	resp    Response
	err     error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, _ Request) (Response, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if ctx.Err() != nil {
		return Response{}, ctx.Err()
	}
	return f.resp, f.err
}

func TestAnalyzeRequiresMinimumTransactions(t *testing.T) {
	f := &fakeSummarizer{}
	svc := NewService(f)
	_, err := svc.Analyze(context.Background(), sampleTransactions(MinTransactions-1))
	assert.ErrorIs(t, err, ErrNotEnoughData)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestAnalyzeReturnsSummary(t *testing.T) {
	f := &fakeSummarizer{resp: Response{Summary: "ok"}}
	svc := NewService(f)
	resp, err := svc.Analyze(context.Background(), sampleTransactions(MinTransactions))
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Summary)
}

func TestAnalyzeMapsFailures(t *testing.T) {
	f := &fakeSummarizer{err: errors.New("upstream 500")}
	svc := NewService(f)
	_, err := svc.Analyze(context.Background(), sampleTransactions(6))
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestAnalyzeJoinsInFlightCall(t *testing.T) {
	f := &fakeSummarizer{
		resp:    Response{Summary: "shared"},
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	svc := NewService(f)
	tx := sampleTransactions(5)

	var wg sync.WaitGroup
	results := make([]string, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, _ := svc.Analyze(context.Background(), tx)
		results[0] = resp.Summary
	}()
	<-f.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, _ := svc.Analyze(context.Background(), tx)
		results[1] = resp.Summary
	}()
	// give the second caller time to join the flight
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, []string{"shared", "shared"}, results)
}

func TestAnalyzeIsNotAbortedByCallerCancel(t *testing.T) {
	f := &fakeSummarizer{
		resp:    Response{Summary: "late"},
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	results := cache.NewLRUCache[Response](4, 0)
	svc := NewService(f, WithCache(results))
	tx := sampleTransactions(5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(ctx, tx)
		done <- err
	}()
	<-f.started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(f.release)
	require.Eventually(t, func() bool { return results.Size() == 1 }, time.Second, 10*time.Millisecond)

	resp, err := svc.Analyze(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, "late", resp.Summary)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestAnalyzeCachesByTransactions(t *testing.T) {
	f := &fakeSummarizer{resp: Response{Summary: "cached"}}
	svc := NewService(f, WithCache(cache.NewLRUCache[Response](4, time.Hour)))

	_, err := svc.Analyze(context.Background(), sampleTransactions(5))
	require.NoError(t, err)
	_, err = svc.Analyze(context.Background(), sampleTransactions(5))
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())

	_, err = svc.Analyze(context.Background(), sampleTransactions(6))
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestAnalyzeTimeout(t *testing.T) {
	svc := NewService(blockingUntilDone{}, WithTimeout(20*time.Millisecond))
	_, err := svc.Analyze(context.Background(), sampleTransactions(5))
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

type blockingUntilDone struct{}

func (blockingUntilDone) Summarize(ctx context.Context, _ Request) (Response, error) {
	<-ctx.Done()
	return Response{}, ctx.Err()
}

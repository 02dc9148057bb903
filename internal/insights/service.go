package insights

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/metrics"
)

// Service guards a Summarizer: it enforces the minimum ledger size, joins
// concurrent identical requests, caches results and hides provider errors.
type Service struct {
	summarizer Summarizer
	group      singleflight.Group
	results    *cache.LRUCache[Response]
	logger     *log.Logger
	timeout    time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

func WithCache(c *cache.LRUCache[Response]) ServiceOption {
	return func(s *Service) { s.results = c }
}

func WithLogger(l *log.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentInsights)
		}
	}
}

// WithTimeout bounds a single provider call; zero means no bound.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

func NewService(summarizer Summarizer, opts ...ServiceOption) *Service {
	s := &Service{
		summarizer: summarizer,
		logger:     log.Wrap(nil, log.ComponentInsights),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Results exposes the result cache so it can be swept, or nil.
func (s *Service) Results() *cache.LRUCache[Response] {
	return s.results
}

// Analyze summarizes transactions. It returns ErrNotEnoughData below
// MinTransactions and ErrAnalysisFailed for any provider failure.
//
// Concurrent calls for the same transactions share one provider call. The
// call runs detached from ctx: a caller that goes away stops waiting but the
// call itself is never aborted.
func (s *Service) Analyze(ctx context.Context, transactions []core.Transaction) (Response, error) {
	if len(transactions) < MinTransactions {
		return Response{}, ErrNotEnoughData
	}

	key, err := fingerprint(transactions)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	if s.results != nil {
		if resp, ok := s.results.Get(key); ok {
			metrics.ObserveInsights("cached", 0)
			return resp, nil
		}
	}

	req := Request{Transactions: append([]core.Transaction(nil), transactions...)}
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.call(detached, key, req)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Response{}, res.Err
		}
		return res.Val.(Response), nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

func (s *Service) call(ctx context.Context, key string, req Request) (Response, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.summarizer.Summarize(ctx, req)
	if err != nil {
		metrics.ObserveInsights("error", time.Since(start))
		s.logger.ErrorContext(ctx, "Spending analysis failed",
			log.FieldError, err, log.FieldCount, len(req.Transactions), log.FieldOperation, log.OpSummarize)
		return Response{}, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	metrics.ObserveInsights("ok", time.Since(start))
	s.logger.InfoContext(ctx, "Spending analysis completed",
		log.FieldCount, len(req.Transactions), "duration_ms", time.Since(start).Milliseconds())
	if s.results != nil {
		s.results.Set(key, resp)
	}
	return resp, nil
}

// fingerprint hashes the transaction list so identical ledgers share results.
func fingerprint(transactions []core.Transaction) (string, error) {
	data, err := json.Marshal(transactions)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

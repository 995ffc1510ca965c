package router

import (
	"context"
	"log"
	"time"
)

// DefaultAcceptThreshold is the minimum winning confidence required to
// execute a service instead of falling back to the conversational path.
const DefaultAcceptThreshold = 0.5

// Config tunes a Router.
type Config struct {
	// AcceptThreshold is the minimum winning score; below it the dispatch
	// falls back. Zero means DefaultAcceptThreshold.
	AcceptThreshold float64
	// ExecuteTimeout caps a single service execution. Zero disables the
	// router-imposed deadline and leaves only the caller's context.
	ExecuteTimeout time.Duration
}

// Recorder observes dispatch outcomes, typically for per-service stats.
// Implementations must not block the dispatch path on failure.
type Recorder interface {
	RecordDispatch(ctx context.Context, service string, ok bool, latency time.Duration)
}

// Router selects the best-matching tool service for a request, or declares
// fallback. It holds no mutable state across calls: routing is a pure
// function of (request, registry snapshot), so concurrent dispatches are
// independent.
type Router struct {
	registry  *Registry
	threshold float64
	timeout   time.Duration
	recorder  Recorder
}

// New creates a router over a sealed registry.
func New(registry *Registry, cfg Config) *Router {
	threshold := cfg.AcceptThreshold
	if threshold <= 0 {
		threshold = DefaultAcceptThreshold
	}
	return &Router{
		registry:  registry,
		threshold: threshold,
		timeout:   cfg.ExecuteTimeout,
	}
}

// SetRecorder attaches a dispatch observer. Call before serving traffic.
func (r *Router) SetRecorder(rec Recorder) { r.recorder = rec }

// Threshold returns the configured acceptance threshold.
func (r *Router) Threshold() float64 { return r.threshold }

// Dispatch scores every enabled service and executes at most one of them.
//
// Selection rules:
//   - the strictly highest score wins;
//   - a maximum below the threshold falls back;
//   - a tie at the maximum falls back, since a wrong automatic action is
//     worse than letting the conversational model answer;
//   - an execution failure is surfaced as Failed without cascading to the
//     next-highest scorer.
//
// Dispatch itself never returns an error: scoring is total and selection
// cannot fail.
func (r *Router) Dispatch(ctx context.Context, req *Request) Result {
	winner, score, tied := r.selectWinner(req)

	if winner == nil || score < r.threshold {
		log.Printf("🔀 Dispatch: no service above threshold %.2f (max %.2f) -> fallback", r.threshold, score)
		return Result{Outcome: OutcomeFallback}
	}
	if tied {
		log.Printf("🔀 Dispatch: tie at score %.2f -> fallback", score)
		return Result{Outcome: OutcomeFallback}
	}

	name := winner.Descriptor().Name
	log.Printf("🎯 Dispatch: %q -> %s (score %.2f)", req.Utterance, name, score)

	execCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	payload, err := winner.Execute(execCtx, req)
	latency := time.Since(start)
	r.record(ctx, name, err == nil, latency)

	if err != nil {
		kind := Classify(err)
		log.Printf("❌ Service %s failed (%s): %v", name, kind, err)
		return Result{Outcome: OutcomeFailed, Service: name, Score: score, Kind: kind, Err: err}
	}
	return Result{Outcome: OutcomeHandled, Service: name, Score: score, Payload: payload}
}

// selectWinner computes every enabled service's score and returns the
// unique maximum, if any. tied reports two or more services sharing the
// maximum score.
func (r *Router) selectWinner(req *Request) (winner Service, best float64, tied bool) {
	for _, svc := range r.registry.Enabled() {
		score := clampScore(svc.Score(req))
		switch {
		case winner == nil || score > best:
			winner, best, tied = svc, score, false
		case score == best:
			tied = true
		}
	}
	return winner, best, tied
}

func (r *Router) record(ctx context.Context, service string, ok bool, latency time.Duration) {
	if r.recorder == nil {
		return
	}
	r.recorder.RecordDispatch(ctx, service, ok, latency)
}

// clampScore bounds a service-reported confidence to [0, 1]. Score
// implementations are contracted to stay in range; this only guards the
// selection invariants against a misbehaving one.
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

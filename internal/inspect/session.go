// Package inspect runs live locator evaluations the way an editor does while
// the user types: every request gets a new id, evaluations are throttled, and
// results of requests superseded by a newer one are discarded.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jacoelho/lq/internal/locator"
	"github.com/jacoelho/lq/internal/report"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// ErrStale is returned for a request superseded by a newer one.
var ErrStale = errors.New("inspect: request superseded by a newer one")

// Request is one locator evaluation.
type Request struct {
	Locator string
	Kind    locator.Kind
	Scope   *html.Node
}

// Response carries either a report or the reason there is none.
type Response struct {
	RequestID uint64
	Report    *report.Report
	Err       error
}

// Options configures a Session.
type Options struct {
	// RunID labels every report; a random UUID is used when empty.
	RunID string
	// Details is passed to report.Options.Limit.
	Details int
	// RateLimit is the number of evaluations per second, 0 or negative for unlimited.
	RateLimit float64
}

// Session evaluates requests against one engine.
type Session struct {
	engine  *locator.Engine
	runID   string
	details int
	limiter *rate.Limiter
	latest  atomic.Uint64
}

func New(engine *locator.Engine, opts Options) *Session {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	// burst of 1: one evaluation runs immediately, the next waits for the rate
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &Session{
		engine:  engine,
		runID:   runID,
		details: opts.Details,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (s *Session) RunID() string {
	return s.runID
}

// Latest returns the id of the newest request, 0 before the first one.
func (s *Session) Latest() uint64 {
	return s.latest.Load()
}

// SetRateLimit changes the throttle at runtime.
func (s *Session) SetRateLimit(perSecond float64) {
	if perSecond <= 0 {
		s.limiter.SetLimit(rate.Inf)
		return
	}
	s.limiter.SetLimit(rate.Limit(perSecond))
}

// Inspect evaluates req and returns its report. It fails with ErrStale when a
// newer request was issued while this one waited or ran, and with the context
// error when ctx ends first.
func (s *Session) Inspect(ctx context.Context, req Request) (*report.Report, error) {
	resp := s.inspect(ctx, s.latest.Add(1), req)
	return resp.Report, resp.Err
}

// Submit evaluates req on its own goroutine. The channel receives exactly one
// response and is then closed.
func (s *Session) Submit(ctx context.Context, req Request) <-chan Response {
	id := s.latest.Add(1)
	out := make(chan Response, 1)

	go func() {
		defer close(out)
		out <- s.inspect(ctx, id, req)
	}()

	return out
}

func (s *Session) inspect(ctx context.Context, id uint64, req Request) Response {
	resp := Response{RequestID: id}

	if err := s.limiter.Wait(ctx); err != nil {
		resp.Err = fmt.Errorf("inspect: request %d: %w", id, err)
		return resp
	}
	if s.stale(id) {
		resp.Err = fmt.Errorf("%w: request %d", ErrStale, id)
		return resp
	}

	res := s.engine.Find(req.Kind, req.Locator, req.Scope)
	rep := report.Build(res, report.Options{
		RunID:     s.runID,
		RequestID: id,
		Locator:   req.Locator,
		Kind:      req.Kind,
		Limit:     s.details,
	})

	if s.stale(id) {
		resp.Err = fmt.Errorf("%w: request %d", ErrStale, id)
		return resp
	}
	resp.Report = rep
	return resp
}

func (s *Session) stale(id uint64) bool {
	return s.latest.Load() != id
}

// Package generation drives a single generation attempt from submission to
// result. The Orchestrator is a plain state machine: callers invoke Begin,
// Advance, Complete and Reset from one goroutine, and the backend call itself
// (Execute) touches no orchestrator state so it may run elsewhere.
package generation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/interpretive-systems/anchor/internal/backend"
	"github.com/interpretive-systems/anchor/internal/topics"
)

var (
	ErrInFlight = errors.New("a generation is already in progress")
	ErrNoTopics = errors.New("add a topic to continue")
	ErrNotBusy  = errors.New("no generation in progress")
	ErrStale    = errors.New("outcome does not belong to the current generation")
)

// Backend is the remote media service.
type Backend interface {
	GenerateVideo(ctx context.Context, req backend.Request) (string, error)
	GenerateAudio(ctx context.Context, req backend.Request) (backend.Audio, error)
}

// Orchestrator owns the phase and result of the current session's attempt.
type Orchestrator struct {
	backend Backend
	now     func() time.Time
	newID   func() string

	phase     Phase
	result    Result
	current   *Request
	milestone int
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDs overrides request ID generation.
func WithIDs(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// New returns an Idle orchestrator with a Pending result.
func New(b Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:   b,
		now:       time.Now,
		newID:     uuid.NewString,
		result:    pending(),
		milestone: -1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Phase() Phase    { return o.phase }
func (o *Orchestrator) Result() Result  { return o.result }
func (o *Orchestrator) CanSubmit() bool { return !o.phase.InFlight() }

// Current returns the in-flight or most recent request.
func (o *Orchestrator) Current() (Request, bool) {
	if o.current == nil {
		return Request{}, false
	}
	return *o.current, true
}

// Milestone returns the progress step reached so far. ok is false before the
// first Advance of an attempt.
func (o *Orchestrator) Milestone() (Milestone, bool) {
	if o.milestone < 0 || o.milestone >= len(Milestones) {
		return Milestone{}, false
	}
	return Milestones[o.milestone], true
}

// Begin validates the submission, builds the request and enters Submitting.
// While an attempt is in flight it fails with ErrInFlight and changes nothing.
func (o *Orchestrator) Begin(list []string, mode topics.SourceMode, kind ArtifactKind) (Request, error) {
	if o.phase.InFlight() {
		return Request{}, ErrInFlight
	}
	if len(list) == 0 {
		return Request{}, ErrNoTopics
	}
	req := Request{
		ID:         o.newID(),
		Topics:     append([]string(nil), list...),
		SourceMode: mode,
		Kind:       kind,
		CreatedAt:  o.now(),
	}
	o.current = &req
	o.phase = PhaseSubmitting
	o.result = pending()
	o.milestone = -1
	return req, nil
}

// Advance moves to the next cosmetic milestone, holding at the last one.
// ok is false when no attempt is in flight.
func (o *Orchestrator) Advance() (Milestone, bool) {
	if !o.phase.InFlight() {
		return Milestone{}, false
	}
	o.phase = PhaseReportingProgress
	if o.milestone < len(Milestones)-1 {
		o.milestone++
	}
	return Milestones[o.milestone], true
}

// Execute performs the backend call for req. It reads no mutable state.
func (o *Orchestrator) Execute(ctx context.Context, req Request) Outcome {
	out := Outcome{RequestID: req.ID, Started: o.now()}
	if o.backend == nil {
		out.Err = &backend.Error{Kind: backend.KindUnexpected, Message: "no backend configured"}
		out.Finished = o.now()
		return out
	}

	switch req.Kind {
	case KindAudio:
		audio, err := o.backend.GenerateAudio(ctx, req.backendRequest())
		out.Err = err
		out.Artifact = Artifact{Kind: KindAudio, Data: audio.Data, ContentType: audio.ContentType}
	default:
		url, err := o.backend.GenerateVideo(ctx, req.backendRequest())
		out.Err = err
		out.Artifact = Artifact{Kind: KindVideo, URL: url}
	}
	out.Finished = o.now()
	return out
}

// Complete records the outcome of the in-flight attempt and enters Completed
// or Failed.
func (o *Orchestrator) Complete(out Outcome) (Result, error) {
	if !o.phase.InFlight() {
		return o.result, ErrNotBusy
	}
	if o.current == nil || out.RequestID != o.current.ID {
		return o.result, ErrStale
	}
	o.result = out.Result()
	if o.result.Status == ResultSuccess {
		o.phase = PhaseCompleted
	} else {
		o.phase = PhaseFailed
	}
	return o.result, nil
}

// Submit runs a whole attempt synchronously.
func (o *Orchestrator) Submit(ctx context.Context, list []string, mode topics.SourceMode, kind ArtifactKind) (Result, error) {
	req, err := o.Begin(list, mode, kind)
	if err != nil {
		return o.result, err
	}
	return o.Complete(o.Execute(ctx, req))
}

// Reset returns a finished attempt to Idle with a Pending result. It is a
// no-op from Idle and refused while an attempt is in flight.
func (o *Orchestrator) Reset() error {
	if o.phase.InFlight() {
		return ErrInFlight
	}
	o.phase = PhaseIdle
	o.result = pending()
	o.milestone = -1
	return nil
}

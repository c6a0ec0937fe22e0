// Package session bundles the topic registry, the generation orchestrator and
// the optional stores one console session works with.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/interpretive-systems/anchor/internal/artifacts"
	"github.com/interpretive-systems/anchor/internal/generation"
	"github.com/interpretive-systems/anchor/internal/history"
	"github.com/interpretive-systems/anchor/internal/logger"
	"github.com/interpretive-systems/anchor/internal/prefs"
	"github.com/interpretive-systems/anchor/internal/topics"
)

const (
	HintEmpty      = "Add a topic to continue."
	HintSingleOnly = "Only one topic allowed per video for now."
	HintAtCapacity = "Topic limit reached. Remove one first."
)

// Options configures a Session. Artifacts and History are optional.
type Options struct {
	MaxTopics int
	Backend   generation.Backend
	Artifacts *artifacts.Store
	History   *history.Store
	Generator []generation.Option
}

// Session is the explicit per-user context. Like the orchestrator it is
// driven from a single goroutine; only Execute and Record may run elsewhere.
type Session struct {
	registry  *topics.Registry
	orch      *generation.Orchestrator
	kind      generation.ArtifactKind
	artifacts *artifacts.Store
	history   *history.Store
}

func New(opts Options) *Session {
	return &Session{
		registry:  topics.NewRegistry(opts.MaxTopics),
		orch:      generation.New(opts.Backend, opts.Generator...),
		artifacts: opts.Artifacts,
		history:   opts.History,
	}
}

func (s *Session) Registry() *topics.Registry { return s.registry }

func (s *Session) AddTopic(text string) error { return s.registry.Add(text) }
func (s *Session) RemoveTopic(i int) error    { return s.registry.RemoveAt(i) }
func (s *Session) Topics() []string           { return s.registry.List() }

func (s *Session) SelectMode(m topics.SourceMode) { s.registry.SetMode(m) }
func (s *Session) Mode() topics.SourceMode        { return s.registry.Mode() }

func (s *Session) SelectKind(k generation.ArtifactKind) { s.kind = k }
func (s *Session) Kind() generation.ArtifactKind        { return s.kind }

// ToggleKind flips between video and audio.
func (s *Session) ToggleKind() generation.ArtifactKind {
	if s.kind == generation.KindVideo {
		s.kind = generation.KindAudio
	} else {
		s.kind = generation.KindVideo
	}
	return s.kind
}

func (s *Session) Phase() generation.Phase   { return s.orch.Phase() }
func (s *Session) Result() generation.Result { return s.orch.Result() }

func (s *Session) Milestone() (generation.Milestone, bool) { return s.orch.Milestone() }
func (s *Session) Advance() (generation.Milestone, bool)   { return s.orch.Advance() }
func (s *Session) Current() (generation.Request, bool)     { return s.orch.Current() }

// CanSubmit reports whether Begin would succeed right now.
func (s *Session) CanSubmit() bool {
	return s.orch.CanSubmit() && s.registry.Len() > 0
}

// CanAddTopic reports whether the add action is available at all.
func (s *Session) CanAddTopic() bool { return !s.registry.Full() }

// Hint explains why topic entry or submission is limited, or returns "".
func (s *Session) Hint() string {
	switch {
	case s.registry.Len() == 0:
		return HintEmpty
	case s.registry.Full() && s.registry.Cap() == 1:
		return HintSingleOnly
	case s.registry.Full():
		return HintAtCapacity
	default:
		return ""
	}
}

// Begin snapshots the registry and starts an attempt.
func (s *Session) Begin() (generation.Request, error) {
	return s.orch.Begin(s.registry.List(), s.registry.Mode(), s.kind)
}

// Execute calls the backend and, for audio, writes the bytes to the artifact
// directory. It does not touch session state.
func (s *Session) Execute(ctx context.Context, req generation.Request) generation.Outcome {
	logger.Infof("generation %s: requesting %s for %v (%s)", req.ID, req.Kind, req.Topics, req.SourceMode)
	out := s.orch.Execute(ctx, req)
	if out.Err != nil || out.Artifact.Kind != generation.KindAudio || s.artifacts == nil {
		return out
	}
	topic := ""
	if len(req.Topics) > 0 {
		topic = req.Topics[0]
	}
	path, err := s.artifacts.SaveAudio(topic, out.Artifact.Data, out.Artifact.ContentType, out.Finished)
	if err != nil {
		logger.Warnf("generation %s: keep audio in memory: %v", req.ID, err)
		return out
	}
	out.Artifact.Path = path
	return out
}

// Complete applies an outcome. Stale outcomes return generation.ErrStale and
// change nothing.
func (s *Session) Complete(out generation.Outcome) (generation.Result, error) {
	res, err := s.orch.Complete(out)
	if err != nil {
		logger.Debugf("generation %s: outcome ignored: %v", out.RequestID, err)
		return res, err
	}
	if res.Status == generation.ResultSuccess {
		logger.Infof("generation %s: completed: %s", out.RequestID, res.Artifact.Ref())
	} else {
		logger.Warnf("generation %s: failed: %v", out.RequestID, res.Err)
	}
	return res, nil
}

// Attempt describes a finished attempt for the history log.
func Attempt(req generation.Request, out generation.Outcome, res generation.Result) history.Attempt {
	a := history.Attempt{
		ID:         req.ID,
		Topics:     append([]string(nil), req.Topics...),
		SourceMode: req.SourceMode.String(),
		Kind:       req.Kind.String(),
		StartedAt:  out.Started,
		FinishedAt: out.Finished,
	}
	if res.Status == generation.ResultSuccess {
		a.Status = generation.PhaseCompleted.String()
		a.Artifact = res.Artifact.Ref()
		return a
	}
	a.Status = generation.PhaseFailed.String()
	if res.Err != nil {
		a.ErrorKind = res.Err.Kind.String()
		a.Message = res.Err.Message
	}
	return a
}

// Record stores a finished attempt. It is a no-op without a history store.
func (s *Session) Record(ctx context.Context, a history.Attempt) error {
	if s.history == nil {
		return nil
	}
	if err := s.history.Record(ctx, a); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// Submit runs one attempt synchronously and records it.
func (s *Session) Submit(ctx context.Context) (generation.Result, error) {
	req, err := s.Begin()
	if err != nil {
		return s.orch.Result(), err
	}
	out := s.Execute(ctx, req)
	res, err := s.Complete(out)
	if err != nil {
		return res, err
	}
	recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Record(recordCtx, Attempt(req, out, res)); err != nil {
		logger.Warnf("generation %s: %v", req.ID, err)
	}
	return res, nil
}

// Reset returns a finished attempt to Idle. Topics are kept.
func (s *Session) Reset() error { return s.orch.Reset() }

// Clear resets the attempt and empties the registry.
func (s *Session) Clear() error {
	if err := s.orch.Reset(); err != nil {
		return err
	}
	s.registry.Clear()
	return nil
}

// ApplyPrefs restores mode and kind. Unknown values are ignored.
func (s *Session) ApplyPrefs(p prefs.Prefs) {
	if p.SourceMode != "" {
		if m, err := topics.ParseSourceMode(p.SourceMode); err == nil {
			s.registry.SetMode(m)
		}
	}
	if p.ArtifactKind != "" {
		if k, err := generation.ParseArtifactKind(p.ArtifactKind); err == nil {
			s.kind = k
		}
	}
}

// Prefs captures mode and kind for persistence.
func (s *Session) Prefs(base prefs.Prefs) prefs.Prefs {
	base.SourceMode = s.registry.Mode().String()
	base.ArtifactKind = s.kind.String()
	return base
}

// Close releases the history store.
func (s *Session) Close() error {
	if s.history == nil {
		return nil
	}
	return s.history.Close()
}

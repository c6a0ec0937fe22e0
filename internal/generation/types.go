package generation

import (
	"fmt"
	"strings"
	"time"

	"github.com/interpretive-systems/anchor/internal/backend"
	"github.com/interpretive-systems/anchor/internal/topics"
)

// Phase is the orchestrator's position in the attempt lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseReportingProgress
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseReportingProgress:
		return "reporting_progress"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// InFlight reports whether an attempt is waiting on the backend.
func (p Phase) InFlight() bool {
	return p == PhaseSubmitting || p == PhaseReportingProgress
}

// ArtifactKind selects which endpoint is called.
type ArtifactKind int

const (
	KindVideo ArtifactKind = iota
	KindAudio
)

func (k ArtifactKind) String() string {
	if k == KindAudio {
		return "audio"
	}
	return "video"
}

// ParseArtifactKind accepts "video" or "audio".
func ParseArtifactKind(s string) (ArtifactKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "video":
		return KindVideo, nil
	case "audio":
		return KindAudio, nil
	default:
		return KindVideo, fmt.Errorf("unknown artifact kind %q", s)
	}
}

// Request is built fresh on every submission and never mutated afterwards.
type Request struct {
	ID         string
	Topics     []string
	SourceMode topics.SourceMode
	Kind       ArtifactKind
	CreatedAt  time.Time
}

func (r Request) backendRequest() backend.Request {
	return backend.Request{
		ID:         r.ID,
		Topics:     append([]string(nil), r.Topics...),
		SourceType: r.SourceMode.String(),
	}
}

// Artifact locates the produced media: a URL for video, raw bytes for audio.
// Path is set once audio has been written to disk.
type Artifact struct {
	Kind        ArtifactKind
	URL         string
	Data        []byte
	ContentType string
	Path        string
}

// Ref is the locator shown to the user and stored in history.
func (a Artifact) Ref() string {
	switch {
	case a.URL != "":
		return a.URL
	case a.Path != "":
		return a.Path
	default:
		return fmt.Sprintf("%d bytes of %s", len(a.Data), a.Kind)
	}
}

// ResultStatus tags the Result variant.
type ResultStatus int

const (
	ResultPending ResultStatus = iota
	ResultSuccess
	ResultFailure
)

// Result is Pending, Success{Artifact} or Failure{Err}.
type Result struct {
	Status   ResultStatus
	Artifact Artifact
	Err      *backend.Error
}

func pending() Result { return Result{Status: ResultPending} }

// Outcome is what a finished backend call hands back to Complete.
type Outcome struct {
	RequestID string
	Artifact  Artifact
	Err       error
	Started   time.Time
	Finished  time.Time
}

// Result converts the outcome into the Result variant. Any error becomes a
// classified failure.
func (o Outcome) Result() Result {
	if o.Err != nil {
		return Result{Status: ResultFailure, Err: backend.AsError(o.Err)}
	}
	return Result{Status: ResultSuccess, Artifact: o.Artifact}
}

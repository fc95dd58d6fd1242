// Package classifier defines the Classifier interface the repository
// depends on, never a concrete ML package, following the dependency-
// injection shape of an external rate-limited collaborator: a readiness
// gate checked before every call, and the concrete implementation treated
// as a pure, swappable collaborator.
package classifier

import (
	"context"
	"time"

	"github.com/nomenaudio/core/internal/core"
)

// ClassificationHit is one candidate cat_id with a confidence in [0,1].
type ClassificationHit struct {
	CatID      string
	Confidence float64
}

// AnalyzeOptions carries per-call tuning (currently only TopK), kept as a
// struct so new knobs don't change the Classifier signature.
type AnalyzeOptions struct {
	TopK int
}

// AnalysisResult is what a Classifier call returns: top-K hits, an
// optional free-text caption, and the model version tag that produced
// them.
type AnalysisResult struct {
	Hits         []ClassificationHit
	Caption      string
	ModelVersion string
}

// Classifier is the external collaborator the repository invokes to
// analyze a WAV file. Errors surface as ANALYSIS_FAILED; a request made
// before the ML subsystem signals readiness surfaces as MODEL_NOT_READY.
type Classifier interface {
	Analyze(ctx context.Context, wavPath string, opts AnalyzeOptions) (AnalysisResult, error)
}

// ReadinessGate wraps a Classifier with an external readiness signal,
// refusing analysis until SetReady has been called — mirroring a
// rate-limiter gate that blocks calls until its ticker fires.
type ReadinessGate struct {
	inner Classifier
	ready chan struct{}
	once  bool
}

// NewReadinessGate wraps inner, starting in the not-ready state.
func NewReadinessGate(inner Classifier) *ReadinessGate {
	return &ReadinessGate{inner: inner, ready: make(chan struct{})}
}

// SetReady marks the model as ready; idempotent.
func (g *ReadinessGate) SetReady() {
	if !g.once {
		g.once = true
		close(g.ready)
	}
}

// IsReady reports whether SetReady has been called.
func (g *ReadinessGate) IsReady() bool {
	select {
	case <-g.ready:
		return true
	default:
		return false
	}
}

// Analyze refuses with MODEL_NOT_READY until SetReady has been called.
func (g *ReadinessGate) Analyze(ctx context.Context, wavPath string, opts AnalyzeOptions) (AnalysisResult, error) {
	if !g.IsReady() {
		return AnalysisResult{}, core.New(core.ModelNotReady, "classifier not yet ready")
	}
	result, err := g.inner.Analyze(ctx, wavPath, opts)
	if err != nil {
		return AnalysisResult{}, core.Wrap(core.AnalysisFailed, "classifier call failed", err)
	}
	return result, nil
}

// NullClassifier always reports MODEL_NOT_READY; useful as a safe default
// before any real classifier is wired in.
type NullClassifier struct{}

func (NullClassifier) Analyze(context.Context, string, AnalyzeOptions) (AnalysisResult, error) {
	return AnalysisResult{}, core.New(core.ModelNotReady, "no classifier configured")
}

// StaticClassifier returns a fixed result for every call; used in tests
// and for scripted batch re-analysis against a pre-computed hit set.
type StaticClassifier struct {
	Result AnalysisResult
	Delay  time.Duration
}

func (s StaticClassifier) Analyze(ctx context.Context, _ string, _ AnalyzeOptions) (AnalysisResult, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return AnalysisResult{}, ctx.Err()
		}
	}
	return s.Result, nil
}

package ingestion

import "fmt"

// FailureKind names the pipeline stage an ingestion attempt died in.
type FailureKind string

const (
	FailureExtraction FailureKind = "extraction"
	FailureChunking   FailureKind = "chunking"
	FailureEmbedding  FailureKind = "embedding"
	FailureStorage    FailureKind = "storage"
	FailureInvalidID  FailureKind = "invalid_identifier"
	FailureGeneration FailureKind = "generation"
)

// Failure is a pipeline error tagged with the stage that produced it, so
// callers branch on the stage instead of matching error strings.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func newFailure(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Err: fmt.Errorf(format, args...)}
}

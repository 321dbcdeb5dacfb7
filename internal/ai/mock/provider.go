package mock

import (
	"context"

	"github.com/seekerhq/intentcrawl/internal/ai"
	"github.com/seekerhq/intentcrawl/pkg/models"
)

// MockOracle satisfies models.Oracle for testing.
type MockOracle struct {
	Name_        string
	EvaluateFunc func(ctx context.Context, q models.LinkQuery) (models.Verdict, error)

	// Queries records every evaluation request, in order.
	Queries []models.LinkQuery
}

func (m *MockOracle) Name() string {
	if m.Name_ == "" {
		return "mock"
	}
	return m.Name_
}

func (m *MockOracle) EvaluateLink(ctx context.Context, q models.LinkQuery) (models.Verdict, error) {
	m.Queries = append(m.Queries, q)
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, q)
	}
	return models.Verdict{ShouldCrawl: true, Reasoning: "mock verdict", Confidence: 0.9}, nil
}

// NewMockOracle returns a MockOracle that admits everything with high confidence.
func NewMockOracle() *MockOracle {
	return &MockOracle{Name_: "mock"}
}

// NewScriptedOracle returns a MockOracle whose verdicts are keyed by URL.
// Links absent from the script are rejected with zero confidence.
func NewScriptedOracle(verdicts map[string]models.Verdict) *MockOracle {
	return &MockOracle{
		Name_: "mock-scripted",
		EvaluateFunc: func(_ context.Context, q models.LinkQuery) (models.Verdict, error) {
			if v, ok := verdicts[q.URL]; ok {
				return v, nil
			}
			return models.Verdict{Reasoning: "not in script", Confidence: 0}, nil
		},
	}
}

// NewFailingOracle returns a MockOracle that always returns the given error.
func NewFailingOracle(err error) *MockOracle {
	return &MockOracle{
		Name_: "mock-failing",
		EvaluateFunc: func(_ context.Context, _ models.LinkQuery) (models.Verdict, error) {
			return models.Verdict{}, err
		},
	}
}

// NewTimeoutOracle returns a MockOracle that blocks until context is cancelled.
func NewTimeoutOracle() *MockOracle {
	return &MockOracle{
		Name_: "mock-timeout",
		EvaluateFunc: func(ctx context.Context, _ models.LinkQuery) (models.Verdict, error) {
			<-ctx.Done()
			return models.Verdict{}, ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockOracle implements Oracle.
var _ models.Oracle = (*MockOracle)(nil)

package analyzer

import (
	"errors"
	"fmt"

	"github.com/Harshitk-cp/storybible/internal/domain"
)

// ErrUnavailable wraps every failure to build or run the analyzer. Callers in
// the service layer treat it as "no information" rather than a hard error.
var ErrUnavailable = errors.New("text analyzer unavailable")

// Provider constants
const (
	ProviderProse = "prose"
	ProviderMock  = "mock"
)

type Options struct {
	// ProperNounFallback promotes proper-noun runs the entity tagger missed
	// to PERSON spans. Character names are the usual casualty.
	ProperNounFallback bool
}

// New creates an analyzer for the given provider name.
func New(provider string, opts Options) (domain.TextAnalyzer, error) {
	switch provider {
	case ProviderProse, "":
		return NewProseAnalyzer(opts)
	case ProviderMock:
		return NewMockAnalyzer(), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q (valid options: prose, mock)", ErrUnavailable, provider)
	}
}

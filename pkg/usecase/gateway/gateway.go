package gateway

import (
	"time"

	"github.com/kfpc0808/researchtmfax/pkg/adapter"
)

// UseCase mediates CRUD requests between callers and the external tabular
// service. It holds no state across requests; every operation works on a
// snapshot fetched for that operation.
type UseCase struct {
	tabular adapter.Tabular
	rules   *ContactRules
	now     func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithRules sets the contact rule configuration
func WithRules(rules *ContactRules) Option {
	return func(uc *UseCase) {
		uc.rules = rules
	}
}

// WithNow sets the clock, mainly for tests
func WithNow(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a new gateway UseCase instance
func New(tabular adapter.Tabular, opts ...Option) *UseCase {
	uc := &UseCase{
		tabular: tabular,
		rules:   DefaultContactRules(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

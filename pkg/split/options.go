package split

import "github.com/chazu/meshsplit/pkg/logging"

// Option configures a Driver.
type Option func(*driverOptions)

type driverOptions struct {
	logger     logging.Logger
	strategy   Strategy
	budget     FaceBudget
	refineAxis *Axis
	extractor  Extractor
}

func defaultOptions() driverOptions {
	return driverOptions{
		logger:   logging.NewNop(),
		strategy: StrategyBMesh,
		budget:   BudgetFaces,
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(o *driverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStrategy selects the extraction backend. Defaults to StrategyBMesh.
func WithStrategy(s Strategy) Option {
	return func(o *driverOptions) {
		o.strategy = s
	}
}

// WithFaceBudget sets the unit PolicyFaceCount measures cuts in.
// Defaults to BudgetFaces.
func WithFaceBudget(b FaceBudget) Option {
	return func(o *driverOptions) {
		o.budget = b
	}
}

// WithRefineAxis enables one extra cut along axis when the remainder left
// after the main loop still holds at least one part's share of vertices.
func WithRefineAxis(axis Axis) Option {
	return func(o *driverOptions) {
		a := axis
		o.refineAxis = &a
	}
}

// WithExtractor overrides the extraction backend chosen by the strategy.
func WithExtractor(e Extractor) Option {
	return func(o *driverOptions) {
		o.extractor = e
	}
}

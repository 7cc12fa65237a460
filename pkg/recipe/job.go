package recipe

import (
	"github.com/chazu/meshsplit/pkg/logging"
	"github.com/chazu/meshsplit/pkg/split"
)

// Job is one (split ...) form: the mesh to cut and how to cut it.
type Job struct {
	Mesh     string           `json:"mesh"`
	Params   split.Params     `json:"params"`
	Strategy split.Strategy   `json:"strategy"`
	Budget   split.FaceBudget `json:"budget"`
	Refine   *split.Axis      `json:"refine,omitempty"`
}

// DefaultJob returns the settings a bare (split "name") uses.
func DefaultJob(mesh string) Job {
	return Job{
		Mesh: mesh,
		Params: split.Params{
			Parts:  5,
			Policy: split.PolicyVertexCount,
			Axis:   split.AxisX,
		},
		Strategy: split.StrategyBMesh,
		Budget:   split.BudgetFaces,
	}
}

// Options converts the job's settings into driver options.
func (j Job) Options(logger logging.Logger) []split.Option {
	opts := []split.Option{
		split.WithLogger(logger),
		split.WithStrategy(j.Strategy),
		split.WithFaceBudget(j.Budget),
	}
	if j.Refine != nil {
		opts = append(opts, split.WithRefineAxis(*j.Refine))
	}
	return opts
}

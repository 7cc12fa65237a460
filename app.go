package main

import (
	"fmt"
	"path/filepath"

	"github.com/chazu/meshsplit/pkg/host"
	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/chazu/meshsplit/pkg/kernel/sdfx"
	"github.com/chazu/meshsplit/pkg/logging"
	"github.com/chazu/meshsplit/pkg/meshio"
	"github.com/chazu/meshsplit/pkg/recipe"
	"github.com/chazu/meshsplit/pkg/report"
	"github.com/chazu/meshsplit/pkg/split"
	"github.com/chazu/meshsplit/pkg/tessellate"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties recipe evaluation, tessellation, the scene and the split
// driver together.
type App struct {
	engine  *recipe.Engine
	kernel  kernel.Kernel
	log     logging.Logger
	baseDir string
}

// AppOption configures an App.
type AppOption func(*App)

// WithKernel replaces the default sdfx kernel.
func WithKernel(k kernel.Kernel) AppOption {
	return func(a *App) { a.kernel = k }
}

// WithAppLogger sets the logger passed to the scene and split driver.
func WithAppLogger(l logging.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithBaseDir sets the directory relative (load ...) paths resolve from.
func WithBaseDir(dir string) AppOption {
	return func(a *App) { a.baseDir = dir }
}

// MeshData is the JSON-serializable mesh format: world-space triangles
// with per-vertex normals.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// SplitSummary describes one split job after it ran.
type SplitSummary struct {
	Mesh   string         `json:"mesh"`
	Result *split.Result  `json:"result"`
	Report *report.Report `json:"report,omitempty"`
}

// EvalResult is the full result of evaluating a recipe.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Splits   []SplitSummary  `json:"splits"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with the sdfx kernel and a silent logger.
func NewApp(opts ...AppOption) *App {
	a := &App{
		engine: recipe.NewEngine(),
		kernel: sdfx.New(),
		log:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Evaluate runs recipe source end to end and returns every mesh left in
// the scene. Problems are reported in the result rather than returned.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Splits:   []SplitSummary{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	built, err := a.Build(source)
	if built != nil {
		result.Errors = append(result.Errors, built.Errors...)
		result.Warnings = append(result.Warnings, built.Warnings...)
	}
	if err != nil {
		a.log.Error("evaluate failed", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(result.Errors) > 0 {
		return result
	}

	result.Splits = built.Splits
	for i, m := range built.Scene.Meshes() {
		result.Meshes = append(result.Meshes, toMeshData(m, colorPalette[i%len(colorPalette)]))
	}
	return result
}

// Built is the scene produced from a recipe after its split jobs ran.
type Built struct {
	Scene    *host.Scene
	Splits   []SplitSummary
	Errors   []EvalErrorData
	Warnings []EvalErrorData
}

// Build evaluates source, tessellates its meshes into a fresh scene and
// runs its split jobs in order. Recipe errors come back in Built.Errors
// with a nil Scene; tessellation and split failures are returned.
func (a *App) Build(source string) (*Built, error) {
	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return nil, fmt.Errorf("evaluation: %w", err)
	}
	built := &Built{}
	if len(evalErrs) > 0 {
		built.Errors = lo.Map(evalErrs, func(e recipe.EvalError, _ int) EvalErrorData {
			return EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		})
		return built, nil
	}
	built.Warnings = lo.Map(res.Warnings, func(w recipe.EvalWarning, _ int) EvalErrorData {
		return EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message}
	})

	meshes, err := tessellate.Tessellate(res.Graph, a.kernel, tessellate.LoaderFunc(a.load))
	if err != nil {
		return built, err
	}

	built.Scene = host.NewScene(a.log)
	for _, m := range meshes {
		built.Scene.Add(m)
	}
	for _, job := range res.Jobs {
		summary, err := a.runJob(built.Scene, job)
		if err != nil {
			return built, fmt.Errorf("split %q: %w", job.Mesh, err)
		}
		built.Splits = append(built.Splits, *summary)
	}
	return built, nil
}

// Split cuts m according to job in a scene of its own.
func (a *App) Split(m *kernel.Mesh, job recipe.Job) (*host.Scene, *SplitSummary, error) {
	scene := host.NewScene(a.log)
	obj := scene.Add(m)
	job.Mesh = obj.Name
	summary, err := a.runJob(scene, job)
	if err != nil {
		return scene, nil, err
	}
	return scene, summary, nil
}

func (a *App) runJob(scene *host.Scene, job recipe.Job) (*SplitSummary, error) {
	if err := scene.SetActive(job.Mesh); err != nil {
		return nil, err
	}
	res, err := split.NewDriver(job.Params, job.Options(a.log)...).Run(scene)
	if err != nil {
		return nil, err
	}

	summary := &SplitSummary{Mesh: job.Mesh, Result: res}
	if res.Parts == 0 {
		return summary, nil
	}
	names := append(append([]string{}, res.Extracted...), res.Remainder)
	parts := make([]*kernel.Mesh, 0, len(names))
	axes := make([]split.Axis, 0, len(names))
	for _, name := range names {
		obj, err := scene.Object(name)
		if err != nil {
			return nil, err
		}
		parts = append(parts, obj.Mesh)
		axis, ok := res.CutAxis(name)
		if !ok {
			axis = job.Params.Axis
		}
		axes = append(axes, axis)
	}
	summary.Report, err = report.Build(parts, job.Params.Axis, report.WithCutAxes(axes...))
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (a *App) load(path string) (*kernel.Mesh, error) {
	if !filepath.IsAbs(path) && a.baseDir != "" {
		path = filepath.Join(a.baseDir, path)
	}
	return meshio.Load(path)
}

// toMeshData triangulates m in world space with area-weighted vertex
// normals.
func toMeshData(m *kernel.Mesh, color string) MeshData {
	n := m.VertexCount()
	world := make([]mgl64.Vec3, n)
	for i := range world {
		world[i] = m.WorldVertex(i)
	}

	normals := make([]mgl64.Vec3, n)
	indices := m.Triangles()
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		fn := world[i1].Sub(world[i0]).Cross(world[i2].Sub(world[i0]))
		normals[i0] = normals[i0].Add(fn)
		normals[i1] = normals[i1].Add(fn)
		normals[i2] = normals[i2].Add(fn)
	}

	md := MeshData{
		Vertices: make([]float32, 0, n*3),
		Normals:  make([]float32, 0, n*3),
		Indices:  indices,
		PartName: m.Name,
		Color:    color,
	}
	for i := 0; i < n; i++ {
		nv := normals[i]
		if l := nv.Len(); l > 0 {
			nv = nv.Mul(1 / l)
		}
		md.Vertices = append(md.Vertices, float32(world[i][0]), float32(world[i][1]), float32(world[i][2]))
		md.Normals = append(md.Normals, float32(nv[0]), float32(nv[1]), float32(nv[2]))
	}
	return md
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/meshsplit/pkg/config"
	"github.com/chazu/meshsplit/pkg/host"
	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/chazu/meshsplit/pkg/kernel/sdfx"
	"github.com/chazu/meshsplit/pkg/logging"
	"github.com/chazu/meshsplit/pkg/meshio"
	"github.com/chazu/meshsplit/pkg/split"
	"github.com/spf13/cobra"
)

// cli holds state shared by all commands.
type cli struct {
	configPath string
	logLevel   string
	logFile    string

	root    *cobra.Command
	cfg     *config.Config
	log     logging.Logger
	cleanup func()
}

func newCLI() *cli {
	c := &cli{log: logging.NewNop()}
	c.root = &cobra.Command{
		Use:           "meshsplit",
		Short:         "Split meshes into parts along an axis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}
	pf := c.root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "YAML or TOML configuration file")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&c.logFile, "log-file", "", "also append JSON logs to this file")

	c.root.AddCommand(c.splitCmd(), c.runCmd(), c.meshesCmd(), c.infoCmd(), c.generateCmd())
	return c
}

// Execute runs the command line and closes the log file whatever the
// outcome.
func (c *cli) Execute() error {
	defer c.close()
	return c.root.Execute()
}

func (c *cli) close() {
	if c.cleanup != nil {
		c.cleanup()
		c.cleanup = nil
	}
}

func (c *cli) setup() error {
	c.cfg = config.Default()
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.cfg = cfg
	}
	if c.logLevel != "" {
		c.cfg.Log.Level = c.logLevel
	}
	if c.logFile != "" {
		c.cfg.Log.File = c.logFile
	}
	level, err := logging.ParseLevel(c.cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, cleanup, err := logging.Setup(c.cfg.Log.File, level)
	if err != nil {
		return err
	}
	c.log = logging.NewSlog(logger)
	c.cleanup = cleanup
	return nil
}

// splitFlags are the split settings that can override the config file.
type splitFlags struct {
	parts    int
	mode     string
	axis     string
	strategy string
	budget   string
	refine   string
	outDir   string
	format   string
	asJSON   bool
}

// register adds the output flags, and the split flags when withSplit is
// set. Recipes carry their own split settings.
func (f *splitFlags) register(cmd *cobra.Command, withSplit bool) {
	fs := cmd.Flags()
	fs.StringVarP(&f.outDir, "out", "o", "", "output directory (default <input>-parts)")
	fs.StringVarP(&f.format, "format", "f", "obj", "output format: obj or stl")
	fs.BoolVar(&f.asJSON, "json", false, "print the report as JSON")
	if !withSplit {
		return
	}
	fs.IntVarP(&f.parts, "parts", "n", 5, "number of parts")
	fs.StringVarP(&f.mode, "mode", "m", "vertex", "cut sizing: vertex or face")
	fs.StringVarP(&f.axis, "axis", "a", "x", "split axis: x, y or z")
	fs.StringVar(&f.strategy, "strategy", "bmesh", "extraction backend: bmesh or operator")
	fs.StringVar(&f.budget, "budget", "faces", "face mode budget: faces or vertices")
	fs.StringVar(&f.refine, "refine", "", "axis for one extra cut of a large remainder")
}

// apply copies every flag the user set onto cfg.
func (f *splitFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	if fs.Changed("parts") {
		cfg.Split.Parts = f.parts
	}
	set("mode", &cfg.Split.Mode, f.mode)
	set("axis", &cfg.Split.Axis, f.axis)
	set("strategy", &cfg.Split.Strategy, f.strategy)
	set("budget", &cfg.Split.FaceBudget, f.budget)
	set("refine", &cfg.Split.Refine, f.refine)
	set("out", &cfg.Output.Dir, f.outDir)
	set("format", &cfg.Output.Format, f.format)
	return cfg.Validate()
}

func (c *cli) splitCmd() *cobra.Command {
	var flags splitFlags
	cmd := &cobra.Command{
		Use:   "split <mesh-file>",
		Short: "Split an OBJ or STL mesh and write each part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, c.cfg); err != nil {
				return err
			}
			m, err := meshio.Load(args[0])
			if err != nil {
				return err
			}
			job, err := c.cfg.Split.Job(m.Name)
			if err != nil {
				return err
			}

			app := NewApp(WithAppLogger(c.log))
			scene, summary, err := app.Split(m, job)
			if err != nil {
				return err
			}
			if err := c.writeScene(cmd.OutOrStdout(), scene, c.outDir(args[0])); err != nil {
				return err
			}
			return printSummaries(cmd.OutOrStdout(), []SplitSummary{*summary}, flags.asJSON)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func (c *cli) runCmd() *cobra.Command {
	var flags splitFlags
	cmd := &cobra.Command{
		Use:   "run <recipe>",
		Short: "Evaluate a recipe, run its splits and write every mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, c.cfg); err != nil {
				return err
			}
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			app := NewApp(
				WithAppLogger(c.log),
				WithBaseDir(filepath.Dir(args[0])),
				WithKernel(sdfx.NewWithCells(c.cfg.Kernel.Cells)),
			)
			built, err := app.Build(string(source))
			if built != nil {
				for _, w := range built.Warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Message)
				}
				for _, e := range built.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", args[0], formatEvalError(e))
				}
			}
			if err != nil {
				return err
			}
			if len(built.Errors) > 0 {
				return fmt.Errorf("%s: %d recipe errors", args[0], len(built.Errors))
			}

			if err := c.writeScene(cmd.OutOrStdout(), built.Scene, c.outDir(args[0])); err != nil {
				return err
			}
			return printSummaries(cmd.OutOrStdout(), built.Splits, flags.asJSON)
		},
	}
	flags.register(cmd, false)
	return cmd
}

// meshesCmd prints a recipe's final scene as world-space triangle meshes,
// the JSON a viewer renders.
func (c *cli) meshesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "meshes <recipe>",
		Short: "Evaluate a recipe and print every resulting mesh as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			app := NewApp(
				WithAppLogger(c.log),
				WithBaseDir(filepath.Dir(args[0])),
				WithKernel(sdfx.NewWithCells(c.cfg.Kernel.Cells)),
			)
			result := app.Evaluate(string(source))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%s: %d recipe errors", args[0], len(result.Errors))
			}
			return nil
		},
	}
}

func (c *cli) infoCmd() *cobra.Command {
	var parts int
	cmd := &cobra.Command{
		Use:   "info <mesh-file>",
		Short: "Print mesh statistics and the vertex share of one part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("parts") {
				c.cfg.Split.Parts = parts
			}
			m, err := meshio.Load(args[0])
			if err != nil {
				return err
			}
			lo, hi := m.WorldBounds()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "name:      %s\n", m.Name)
			fmt.Fprintf(w, "vertices:  %d\n", m.VertexCount())
			fmt.Fprintf(w, "faces:     %d\n", m.FaceCount())
			fmt.Fprintf(w, "triangles: %d\n", m.TriangleCount())
			fmt.Fprintf(w, "bounds:    [%g %g %g] - [%g %g %g]\n", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
			fmt.Fprintf(w, "vertices in a part (%d parts): %.2f\n", c.cfg.Split.Parts, split.VerticesInPart(m, c.cfg.Split.Parts))
			return nil
		},
	}
	cmd.Flags().IntVarP(&parts, "parts", "n", 5, "number of parts")
	return cmd
}

func (c *cli) generateCmd() *cobra.Command {
	var (
		size   []float64
		radius float64
		height float64
		cols   int
		rows   int
	)
	cmd := &cobra.Command{
		Use:   "generate <box|cylinder|sphere|grid> <out-file>",
		Short: "Write a test mesh",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, out := strings.ToLower(args[0]), args[1]
			name := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))

			var m *kernel.Mesh
			if shape == "grid" {
				if len(size) < 2 {
					return fmt.Errorf("grid needs --size width,depth")
				}
				m = kernel.Grid(name, cols, rows, size[0], size[1])
			} else {
				k := sdfx.NewWithCells(c.cfg.Kernel.Cells)
				var solid kernel.Solid
				switch shape {
				case "box":
					if len(size) != 3 {
						return fmt.Errorf("box needs --size x,y,z")
					}
					solid = k.Box(size[0], size[1], size[2])
				case "cylinder":
					solid = k.Cylinder(height, radius, 32)
				case "sphere":
					solid = k.Sphere(radius)
				default:
					return fmt.Errorf("unknown shape %q", shape)
				}
				var err error
				if m, err = k.ToMesh(solid); err != nil {
					return err
				}
				m.Name = name
			}
			if err := m.Validate(); err != nil {
				return err
			}
			if err := meshio.Save(out, m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d vertices, %d faces)\n", out, m.VertexCount(), m.FaceCount())
			return nil
		},
	}
	fs := cmd.Flags()
	fs.Float64SliceVar(&size, "size", []float64{10, 10, 10}, "box x,y,z or grid width,depth")
	fs.Float64Var(&radius, "radius", 5, "cylinder or sphere radius")
	fs.Float64Var(&height, "height", 10, "cylinder height")
	fs.IntVar(&cols, "cols", 10, "grid columns")
	fs.IntVar(&rows, "rows", 10, "grid rows")
	return cmd
}

// outDir is the configured output directory, or "<input>-parts" beside
// the input so parts never overwrite it.
func (c *cli) outDir(input string) string {
	if c.cfg.Output.Dir != "" {
		return c.cfg.Output.Dir
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "-parts"
}

// writeScene saves every object in the scene as <dir>/<name>.<format>.
func (c *cli) writeScene(w io.Writer, scene *host.Scene, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, obj := range scene.Objects() {
		path := filepath.Join(dir, partFileName(obj.Name)+"."+c.cfg.Output.Format)
		if err := meshio.Save(path, obj.Mesh); err != nil {
			return err
		}
		c.log.Debug("part written", "object", obj.Name, "path", path)
		fmt.Fprintf(w, "wrote %s\n", path)
	}
	return nil
}

// partFileName turns an object name, which comes from untrusted input
// files, into a bare file name that stays inside the output directory.
func partFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "part"
	}
	return name
}

func printSummaries(w io.Writer, summaries []SplitSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}
	for _, s := range summaries {
		if s.Report == nil {
			fmt.Fprintf(w, "%s: left in one piece\n", s.Mesh)
			continue
		}
		fmt.Fprintf(w, "%s: %d parts in %s\n", s.Mesh, s.Result.Parts, s.Result.Elapsed)
		if err := s.Report.WriteText(w); err != nil {
			return err
		}
	}
	return nil
}

func formatEvalError(e EvalErrorData) string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Package gen runs the whole generation pipeline over Go packages: loading,
// validation, derivation of capability methods, rewriting of checked
// functions and output.
package gen

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/sirkon/safemath/internal/config"
	"github.com/sirkon/safemath/internal/derive"
	"github.com/sirkon/safemath/internal/diag"
	"github.com/sirkon/safemath/internal/rewrite"
	"github.com/sirkon/safemath/internal/validate"
)

// ErrDiagnostics is returned when some package was not generated because of
// reported rule violations. They are available through Result.Diagnostics.
var ErrDiagnostics = errors.New("rule violations found")

// Generator runs the generation pipeline.
type Generator struct {
	cfg    config.Config
	log    *slog.Logger
	dir    string
	dryRun bool
	namer  func(*ast.File) rewrite.Namer
}

// Option customizes a Generator.
type Option func(*Generator)

// WithLogger sets the logger, slog.Default() is used otherwise.
func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) {
		g.log = log
	}
}

// WithDir sets the directory patterns are resolved in.
func WithDir(dir string) Option {
	return func(g *Generator) {
		g.dir = dir
	}
}

// WithDryRun makes the generator compute outputs without writing them.
func WithDryRun(dryRun bool) Option {
	return func(g *Generator) {
		g.dryRun = dryRun
	}
}

// WithNamer overrides how names are invented for rewritten files.
func WithNamer(namer func(*ast.File) rewrite.Namer) Option {
	return func(g *Generator) {
		g.namer = namer
	}
}

// New creates a generator with the given settings.
func New(cfg config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg: cfg,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Output is a generated file.
type Output struct {
	Path    string
	Content []byte
	Remove  bool // a stale generated file to delete
}

// Result of a generation run.
type Result struct {
	Fset        *token.FileSet
	Diagnostics *diag.ReportEngine
	Outputs     []Output
}

// Run generates code for packages matching patterns.
func (g *Generator) Run(ctx context.Context, patterns ...string) (*Result, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	res := &Result{
		Fset:        token.NewFileSet(),
		Diagnostics: &diag.ReportEngine{},
	}
	pkgs, err := g.load(ctx, res.Fset, patterns)
	if err != nil {
		return nil, err
	}

	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outputs, ok, err := g.unit(res, pkg)
		if err != nil {
			return nil, fmt.Errorf("generate package %s: %w", pkg.PkgPath, err)
		}
		if !ok {
			g.log.Warn("package skipped because of rule violations", "package", pkg.PkgPath)
			continue
		}

		if err := g.write(outputs); err != nil {
			return nil, fmt.Errorf("write package %s: %w", pkg.PkgPath, err)
		}
		res.Outputs = append(res.Outputs, outputs...)
	}

	if res.Diagnostics.Len() > 0 {
		return res, ErrDiagnostics
	}
	return res, nil
}

func (g *Generator) load(ctx context.Context, fset *token.FileSet, patterns []string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedSyntax |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedImports,
		Dir:        g.dir,
		Fset:       fset,
		BuildFlags: []string{"-tags=" + g.cfg.Tag},
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			// Operations on capability types are not valid Go before rewriting.
			if e.Kind == packages.TypeError {
				g.log.Debug("type error tolerated", "package", pkg.PkgPath, "error", e.Msg)
				continue
			}
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}

	return pkgs, nil
}

// unit computes outputs of a single package. ok is false when the package
// had rule violations.
func (g *Generator) unit(res *Result, pkg *packages.Package) (_ []Output, ok bool, _ error) {
	if len(pkg.Syntax) == 0 {
		return nil, true, nil
	}
	var diagnosed diag.ReportEngine
	defer func() {
		for _, rep := range diagnosed.Reports() {
			res.Diagnostics.Add(rep)
		}
	}()

	checked := validate.Package(
		res.Fset,
		pkg.Syntax,
		pkg.TypesInfo,
		pkg.Types,
		validate.OptionsFromConfig(g.cfg),
		diagnosed.Phase(diag.ReportValidate),
	)
	if diagnosed.Len() > 0 {
		return nil, false, nil
	}

	var outputs []Output
	dir := filepath.Dir(res.Fset.File(pkg.Syntax[0].Package).Name())
	derived, err := g.derive(pkg, dir, checked.Targets)
	if err != nil {
		return nil, false, err
	}
	if derived != nil {
		outputs = append(outputs, *derived)
	}

	opts := rewrite.OptionsFromConfig(g.cfg)
	opts.Package = pkg.Types
	opts.Derived = checked.Derived
	for _, file := range checked.Checked {
		if g.namer != nil {
			opts.Namer = g.namer(file)
		}

		rewritten, _ := rewrite.File(res.Fset, file, pkg.TypesInfo, opts, diagnosed.Phase(diag.ReportRewrite))
		if diagnosed.Len() > 0 {
			continue
		}

		name := res.Fset.File(file.Package).Name()
		content, err := render(res.Fset, name, rewritten, g.cfg)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", name, err)
		}
		outputs = append(outputs, Output{
			Path:    outputPath(name, g.cfg),
			Content: content,
		})
	}
	if diagnosed.Len() > 0 {
		return nil, false, nil
	}

	return outputs, true, nil
}

// derive returns the derive file of the package or a removal of a stale
// one. It returns nil when there is nothing to do.
func (g *Generator) derive(pkg *packages.Package, dir string, targets []validate.Target) (*Output, error) {
	path := filepath.Join(dir, g.cfg.DeriveFile)
	if len(targets) == 0 {
		for _, file := range pkg.Syntax {
			if ast.IsGenerated(file) && pkg.Fset.File(file.Package).Name() == path {
				return &Output{Path: path, Remove: true}, nil
			}
		}
		return nil, nil
	}

	content, err := derive.Generate(pkg.Name, g.cfg.Runtime, targets)
	if err != nil {
		return nil, fmt.Errorf("derive capabilities: %w", err)
	}
	return &Output{Path: path, Content: content}, nil
}

func (g *Generator) write(outputs []Output) error {
	for _, out := range outputs {
		if g.dryRun {
			g.log.Info("dry run", "file", out.Path, "remove", out.Remove)
			continue
		}

		if out.Remove {
			if err := os.Remove(out.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove stale %s: %w", out.Path, err)
			}
			g.log.Info("removed stale file", "file", out.Path)
			continue
		}

		if err := os.WriteFile(out.Path, out.Content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out.Path, err)
		}
		g.log.Info("generated", "file", out.Path)
	}
	return nil
}

func outputPath(source string, cfg config.Config) string {
	if cfg.Output == config.OutputInplace {
		return source
	}
	return strings.TrimSuffix(source, ".go") + cfg.Suffix
}

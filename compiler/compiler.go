// Package compiler validates node graphs and turns them into source files
// or a runnable preview page.
package compiler

import (
	"time"

	"go.uber.org/zap"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/graph"
	grapherror "github.com/devtycoon/forge/graph/error"
	"github.com/devtycoon/forge/logger"
)

// Options configures a Compiler
type Options struct {
	// DefaultLanguage is used when neither the call nor the graph names one
	DefaultLanguage graph.Language
	// MaxNodes rejects larger graphs; 0 means unlimited
	MaxNodes int
	// MaxEmitted bounds node emissions; 0 means codegen.DefaultMaxEmitted
	MaxEmitted int
}

// Compiler validates then emits. It holds no per-compile state, so one
// Compiler serves concurrent callers.
type Compiler struct {
	opts   Options
	logger *zap.SugaredLogger
}

// New creates a Compiler. A nil logger uses the package logger.
func New(opts Options, log *zap.SugaredLogger) *Compiler {
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = graph.LangJavaScript
	}
	return &Compiler{opts: opts, logger: log}
}

var defaultCompiler = New(Options{}, nil)

func (c *Compiler) log() *zap.SugaredLogger {
	if c.logger != nil {
		return c.logger
	}
	return logger.Logger.Named("compiler")
}

// Compile returns source text for g in language
func Compile(g *graph.Graph, language graph.Language) (string, error) {
	return defaultCompiler.Compile(g, language)
}

// CompileGraph returns the generated file with traversal stats
func CompileGraph(g *graph.Graph, language graph.Language) (*codegen.Output, error) {
	return defaultCompiler.CompileGraph(g, language)
}

// CompileToRuntime returns a self-contained HTML preview of g
func CompileToRuntime(g *graph.Graph) (string, error) {
	return defaultCompiler.CompileToRuntime(g)
}

// Compile returns source text for g in language
func (c *Compiler) Compile(g *graph.Graph, language graph.Language) (string, error) {
	out, err := c.CompileGraph(g, language)
	if err != nil {
		return "", err
	}
	return out.Source, nil
}

// CompileGraph resolves the target (argument, then graph, then default),
// validates and emits
func (c *Compiler) CompileGraph(g *graph.Graph, language graph.Language) (*codegen.Output, error) {
	if language == "" {
		language = g.Language
	}
	if language == "" {
		language = c.opts.DefaultLanguage
	}
	if !language.Valid() {
		return nil, grapherror.Newf(grapherror.CategoryValidation,
			"Pick one of the supported languages",
			"language %q is not supported", language).
			WithSubcategory(grapherror.SubcategoryValidationLanguage).
			WithContext("language", string(language))
	}
	d, _ := Dialect(string(language))
	return c.emit(g, d, language)
}

// CompileToRuntime returns a self-contained HTML preview of g
func (c *Compiler) CompileToRuntime(g *graph.Graph) (string, error) {
	d, _ := Dialect(RuntimeLanguage)
	target := *g
	target.Language = ""
	out, err := c.emit(&target, d, "")
	if err != nil {
		return "", err
	}
	return out.Source, nil
}

// Check validates g for language without emitting
func (c *Compiler) Check(g *graph.Graph, language graph.Language) *graph.Report {
	target := *g
	if language != "" {
		target.Language = language
	}
	return graph.ValidateWith(&target, graph.Options{MaxNodes: c.opts.MaxNodes})
}

func (c *Compiler) emit(g *graph.Graph, d codegen.Dialect, language graph.Language) (*codegen.Output, error) {
	start := time.Now()

	report := c.Check(g, language)
	if !report.OK() {
		errs := report.Errors()
		c.log().Debugw("Graph rejected",
			logger.FieldLanguage, d.Language(),
			logger.FieldNodes, len(g.Nodes),
			logger.FieldIssues, len(errs))
		return nil, grapherror.Newf(grapherror.CategoryValidation, report.Summary(),
			"graph has %d validation errors", len(errs)).
			WithSubcategory(grapherror.SubcategoryValidationStructure).
			WithContext("issues", errs)
	}

	out, err := codegen.EmitWith(g, d, codegen.Options{MaxEmitted: c.opts.MaxEmitted})
	switch {
	case errors.Is(err, codegen.ErrCycle):
		return nil, grapherror.New(grapherror.CategoryCompile, err, "The graph loops back on itself").
			WithSubcategory(grapherror.SubcategoryCompileCycle)
	case errors.Is(err, codegen.ErrTooLarge):
		return nil, grapherror.New(grapherror.CategoryCompile, err, "The graph expands into too much code").
			WithSubcategory(grapherror.SubcategoryCompileTooLarge)
	case err != nil:
		return nil, grapherror.New(grapherror.CategoryInternal, errors.Wrap(err, "emit"), "")
	}

	c.log().Debugw("Compiled graph",
		logger.FieldLanguage, out.Language,
		logger.FieldNodes, out.Stats.Nodes,
		logger.FieldEdges, len(g.Connections),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return out, nil
}

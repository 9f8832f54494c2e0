package commands

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/devtycoon/forge/am"
	"github.com/devtycoon/forge/compiler"
	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/logger"
)

// newCompiler builds a compiler from the loaded configuration
func newCompiler() (*compiler.Compiler, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return compiler.New(compiler.Options{
		DefaultLanguage: graph.Language(cfg.GetDefaultLanguage()),
		MaxNodes:        cfg.Compiler.MaxNodes,
	}, logger.Named("compiler")), nil
}

// loadGraph reads a graph document from path, or stdin for "-"
func loadGraph(path string) (*graph.Graph, error) {
	if path == "-" {
		return graph.Decode(os.Stdin, graph.FormatJSON)
	}
	return graph.Load(path)
}

// printIssues lists validation findings, errors first
func printIssues(report *graph.Report) {
	for _, issue := range report.Errors() {
		pterm.Error.Println(describeIssue(issue))
	}
	for _, issue := range report.Warnings() {
		pterm.Warning.Println(describeIssue(issue))
	}
}

func describeIssue(issue graph.Issue) string {
	where := ""
	switch {
	case issue.NodeID != "":
		where = " (node " + issue.NodeID + ")"
	case issue.ConnectionID != "":
		where = " (connection " + issue.ConnectionID + ")"
	}
	return issue.Message + where + " [" + issue.Code + "]"
}

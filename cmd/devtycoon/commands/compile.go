package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/devtycoon/forge/compiler"
	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/logger"
)

// CompileCmd compiles a graph document
var CompileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a graph document to source",
	Long: `Compile a graph document (JSON or YAML, "-" for JSON on stdin) into
source for one of the supported languages. The language comes from --language,
then the document's own language field, then compiler.default_language.

Examples:
  devtycoon compile game.json                  # Print source to stdout
  devtycoon compile game.json -l rust -o main.rs
  devtycoon compile game.yaml --runtime -o play.html
  devtycoon compile game.json -l lua -o main.lua --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

var (
	compileLanguage string
	compileOutput   string
	compileRuntime  bool
	compileWatch    bool
)

// watchDebounce absorbs editors that write a file in several steps
const watchDebounce = 150 * time.Millisecond

func init() {
	CompileCmd.Flags().StringVarP(&compileLanguage, "language", "l", "", "Target language (see 'devtycoon languages')")
	CompileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Write to a file instead of stdout")
	CompileCmd.Flags().BoolVar(&compileRuntime, "runtime", false, "Emit the runnable HTML preview page")
	CompileCmd.Flags().BoolVar(&compileWatch, "watch", false, "Recompile whenever the file changes (requires --output)")
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]
	if compileWatch && (compileOutput == "" || path == "-") {
		return errors.New("--watch needs a file argument and --output")
	}

	c, err := newCompiler()
	if err != nil {
		return err
	}

	job := compileJob{
		compiler: c,
		path:     path,
		language: graph.Language(compileLanguage),
		runtime:  compileRuntime,
		output:   compileOutput,
	}

	if err := job.run(); err != nil && !compileWatch {
		return err
	}
	if !compileWatch {
		return nil
	}
	return job.watch()
}

// compileJob is one compile invocation, re-run on change in watch mode
type compileJob struct {
	compiler *compiler.Compiler
	path     string
	language graph.Language
	runtime  bool
	output   string
}

// render loads and compiles the graph, returning the text to write
func (j *compileJob) render() (string, error) {
	g, err := loadGraph(j.path)
	if err != nil {
		return "", err
	}

	lang := j.language
	if j.runtime {
		lang = compiler.RuntimeLanguage
	}
	if report := j.compiler.Check(g, lang); len(report.Issues) > 0 {
		printIssues(report)
	}

	if j.runtime {
		return j.compiler.CompileToRuntime(g)
	}
	return j.compiler.Compile(g, j.language)
}

func (j *compileJob) run() error {
	start := time.Now()
	source, err := j.render()
	if err != nil {
		pterm.Error.Printfln("%s: %v", j.path, err)
		return errors.Wrapf(err, "compile %s", j.path)
	}

	if j.output == "" {
		fmt.Print(source)
		return nil
	}
	if dir := filepath.Dir(j.output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	if err := os.WriteFile(j.output, []byte(source), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", j.output)
	}
	pterm.Success.Printfln("%s -> %s (%s)", j.path, j.output, time.Since(start).Round(time.Millisecond))
	return nil
}

// watch recompiles on every change to the graph file until interrupted.
// The directory is watched so editors that replace the file are seen.
func (j *compileJob) watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	target, err := filepath.Abs(j.path)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", j.path)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", j.path)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	pterm.Info.Printfln("Watching %s (Ctrl+C to stop)", j.path)

	var debounce <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			// Errors are reported and the watch continues
			_ = j.run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("File watcher error", logger.FieldError, err.Error())

		case <-sigChan:
			pterm.Info.Println("Stopped watching")
			return nil
		}
	}
}

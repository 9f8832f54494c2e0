package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/graph"
	"github.com/devtycoon/forge/internal/httpclient"
	"github.com/devtycoon/forge/storage"
)

// GraphCmd manages graphs saved in the database
var GraphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Manage saved graphs and installed files",
	Long: `Manage graphs saved in the DevTycoon database, the same store the
server's /api/graphs routes use.

Examples:
  devtycoon graph import game.json            # Save a graph file
  devtycoon graph import https://example.com/g.yaml --id g-demo
  devtycoon graph ls                          # List saved graphs
  devtycoon graph show g-demo --format yaml   # Print a saved graph
  devtycoon graph install g-demo -l python --dir build
  devtycoon graph rm g-demo`,
}

var graphImportCmd = &cobra.Command{
	Use:   "import <file|url>",
	Short: "Save a graph document",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphImport,
}

var graphLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List saved graphs",
	RunE:    runGraphLs,
}

var graphShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphShow,
}

var graphRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a graph and its installed files",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphRm,
}

var graphInstallCmd = &cobra.Command{
	Use:   "install <id>",
	Short: "Compile a saved graph and store main.<ext>",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphInstall,
}

var (
	graphDBPath      string
	graphImportID    string
	graphShowFormat  string
	graphLanguage    string
	graphInstallDir  string
	graphFetchPublic bool
)

func init() {
	GraphCmd.PersistentFlags().StringVar(&graphDBPath, "db-path", "", "Custom database path (overrides config)")

	graphImportCmd.Flags().StringVar(&graphImportID, "id", "", "Graph id (default: generated, or replace an existing graph)")
	graphImportCmd.Flags().BoolVar(&graphFetchPublic, "public-only", true, "Refuse URLs that resolve to private addresses")
	graphShowCmd.Flags().StringVar(&graphShowFormat, "format", "json", "Output format: json, yaml")
	graphInstallCmd.Flags().StringVarP(&graphLanguage, "language", "l", "", "Target language (default: the graph's own)")
	graphInstallCmd.Flags().StringVar(&graphInstallDir, "dir", "", "Also write the file into this directory")

	GraphCmd.AddCommand(graphImportCmd)
	GraphCmd.AddCommand(graphLsCmd)
	GraphCmd.AddCommand(graphShowCmd)
	GraphCmd.AddCommand(graphRmCmd)
	GraphCmd.AddCommand(graphInstallCmd)
}

// withStore opens the database for the duration of fn
func withStore(fn func(ctx context.Context, store *storage.GraphStore) error) error {
	database, err := openDatabase(graphDBPath)
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(context.Background(), storage.NewGraphStore(database))
}

// isURL reports whether arg names an http(s) document
func isURL(arg string) bool {
	u, err := url.Parse(arg)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// readGraphSource loads a graph from a file or URL
func readGraphSource(ctx context.Context, arg string, fetcher *httpclient.Fetcher) (*graph.Graph, error) {
	if !isURL(arg) {
		return loadGraph(arg)
	}
	doc, err := fetcher.Fetch(ctx, arg)
	if err != nil {
		return nil, err
	}
	format := graph.FormatForContentType(doc.ContentType)
	if format == graph.FormatJSON {
		// Servers often send YAML as text/plain
		u, _ := url.Parse(doc.URL)
		format = graph.FormatForPath(u.Path)
	}
	return graph.DecodeBytes(doc.Body, format)
}

func runGraphImport(cmd *cobra.Command, args []string) error {
	c, err := newCompiler()
	if err != nil {
		return err
	}
	fetcher := httpclient.NewFetcher(httpclient.Options{AllowPrivateIP: !graphFetchPublic})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	g, err := readGraphSource(ctx, args[0], fetcher)
	if err != nil {
		return err
	}

	report := c.Check(g, "")
	printIssues(report)
	if !report.OK() {
		return errors.Newf("%s has %d errors, not saved", args[0], len(report.Errors()))
	}

	return withStore(func(ctx context.Context, store *storage.GraphStore) error {
		rec, err := store.SaveGraph(ctx, graphImportID, g)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Saved %s as %s (%d nodes)", args[0], rec.ID, rec.NodeCount)
		return nil
	})
}

func runGraphLs(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, store *storage.GraphStore) error {
		recs, err := store.ListGraphs(ctx)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			pterm.Info.Println("No saved graphs")
			return nil
		}

		rows := pterm.TableData{{"ID", "Name", "Language", "Nodes", "Updated"}}
		for _, r := range recs {
			rows = append(rows, []string{
				r.ID,
				r.Name,
				string(r.Language),
				fmt.Sprint(r.NodeCount),
				r.UpdatedAt.Local().Format(time.DateTime),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	})
}

func runGraphShow(cmd *cobra.Command, args []string) error {
	var format graph.Format
	switch graphShowFormat {
	case "json":
		format = graph.FormatJSON
	case "yaml":
		format = graph.FormatYAML
	default:
		return errors.Newf("unsupported format: %s (supported: json, yaml)", graphShowFormat)
	}

	return withStore(func(ctx context.Context, store *storage.GraphStore) error {
		rec, err := store.GetGraph(ctx, args[0])
		if err != nil {
			return err
		}
		return graph.Encode(os.Stdout, rec.Graph, format)
	})
}

func runGraphRm(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, store *storage.GraphStore) error {
		if err := store.DeleteGraph(ctx, args[0]); err != nil {
			return err
		}
		pterm.Success.Printfln("Deleted %s", args[0])
		return nil
	})
}

func runGraphInstall(cmd *cobra.Command, args []string) error {
	c, err := newCompiler()
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, store *storage.GraphStore) error {
		rec, err := store.GetGraph(ctx, args[0])
		if err != nil {
			return err
		}
		out, err := c.CompileGraph(rec.Graph, graph.Language(graphLanguage))
		if err != nil {
			return err
		}

		err = store.PutArtifact(ctx, &storage.Artifact{
			GraphID:  rec.ID,
			Filename: out.Filename,
			Language: out.Language,
			Source:   out.Source,
			MaxDepth: out.Stats.MaxDepth,
		})
		if err != nil {
			return err
		}

		if graphInstallDir != "" {
			if err := os.MkdirAll(graphInstallDir, 0755); err != nil {
				return errors.Wrapf(err, "failed to create %s", graphInstallDir)
			}
			dest := filepath.Join(graphInstallDir, out.Filename)
			if err := os.WriteFile(dest, []byte(out.Source), 0644); err != nil {
				return errors.Wrapf(err, "failed to write %s", dest)
			}
			pterm.Info.Printfln("Wrote %s", dest)
		}

		pterm.Success.Printfln("Installed %s for %s (%s, %d lines)", out.Filename, rec.ID, out.Language, out.Stats.Lines)
		return nil
	})
}

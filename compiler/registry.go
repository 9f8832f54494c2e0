package compiler

import (
	"sort"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/codegen/cpp"
	"github.com/devtycoon/forge/codegen/golang"
	"github.com/devtycoon/forge/codegen/javascript"
	"github.com/devtycoon/forge/codegen/lua"
	"github.com/devtycoon/forge/codegen/python"
	"github.com/devtycoon/forge/codegen/runtime"
	"github.com/devtycoon/forge/codegen/rust"
	"github.com/devtycoon/forge/codegen/sql"
	"github.com/devtycoon/forge/graph"
)

// RuntimeLanguage is the registry name of the HTML preview target
const RuntimeLanguage = runtime.Language

var dialects = map[string]codegen.Dialect{
	string(graph.LangJavaScript): javascript.New(),
	string(graph.LangPython):     python.New(),
	string(graph.LangCPP):        cpp.New(),
	string(graph.LangRust):       rust.New(),
	string(graph.LangGo):         golang.New(),
	string(graph.LangSQL):        sql.New(),
	string(graph.LangLua):        lua.New(),
	RuntimeLanguage:              runtime.New(),
}

// Dialect returns the dialect registered for a language
func Dialect(language string) (codegen.Dialect, bool) {
	d, ok := dialects[language]
	return d, ok
}

// LanguageInfo describes a compile target
type LanguageInfo struct {
	Name         string               `json:"name"`
	Filename     string               `json:"filename"`
	Capabilities codegen.Capabilities `json:"capabilities"`
}

// Languages lists the seven source targets in display order, followed by
// the runtime preview target
func Languages() []LanguageInfo {
	out := make([]LanguageInfo, 0, len(dialects))
	for _, lang := range graph.Languages {
		out = append(out, info(dialects[string(lang)]))
	}
	return append(out, info(dialects[RuntimeLanguage]))
}

// LanguageNames returns every registered name, sorted
func LanguageNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func info(d codegen.Dialect) LanguageInfo {
	return LanguageInfo{
		Name:         d.Language(),
		Filename:     "main." + d.FileExtension(),
		Capabilities: d.Capabilities(),
	}
}

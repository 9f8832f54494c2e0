// Package codegen turns a node graph into source text for a target language.
//
// # Architecture
//
// The package uses a two-layer design:
//  1. A language-agnostic emitter (emitter.go) walks the graph depth-first
//     from its event-start nodes and decides the control flow: which handle
//     continues a path, where a branch or loop opens a nested block, when a
//     timer consumes the rest of the path.
//  2. Language dialects (javascript/, python/, cpp/, ...) spell each
//     statement and block. They never walk the graph themselves.
//
// The emitter asks a dialect what it can do through Capabilities instead
// of checking language names, so handler closures, async timers and
// mandatory entry points are data rather than branches in node handlers.
//
// # Implementing a New Dialect
//
//  1. Create package: codegen/<language>/dialect.go
//  2. Implement the Dialect interface (see below)
//  3. Register it in compiler/registry.go
//  4. Add output tests next to the dialect
//
// Example:
//
//	type Dialect struct{}
//
//	func (Dialect) Language() string      { return "zig" }
//	func (Dialect) FileExtension() string { return "zig" }
//	func (Dialect) Capabilities() codegen.Capabilities {
//	    return codegen.Capabilities{CommentToken: "//", Indent: "    ", RequiresEntry: true}
//	}
//	// ... implement the statement and block methods
//
// Output is deterministic: the same graph always yields byte-identical
// source, and the emitter never mutates the graph it reads.
package codegen

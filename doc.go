// Package md2html converts Markdown files to standalone HTML documents.
//
// # Quick Start
//
// Convert a string:
//
//	doc, err := md2html.ToHTML("# Hello\n\nWorld", "", "Greeting")
//
// The result is a complete HTML5 document. An empty title becomes
// DefaultTitle; a non-empty CSS string is placed verbatim in one <style>
// block. Loose Markdown never makes the conversion fail.
//
// # Conversion Pipeline
//
//  1. Markdown preprocessing (UTF-8 repair, BOM removal, line endings)
//  2. Markdown to HTML via Goldmark (CommonMark, GFM, footnotes, highlighting)
//  3. Relative link rebasing when the output lives in another directory
//  4. Document assembly (title, optional stylesheet link, optional <style>)
//
// Use NewConverter with WithStyle, WithAssetPath and WithHighlightStyle to
// prepend a built-in or custom stylesheet and pick the code style.
//
// # Sessions
//
// A Session is the working set of jobs (input/output pairs) plus a shared
// CSS path, title and open-after-convert flag. A Manager owns one:
//
//	mgr, err := md2html.NewManager(md2html.NewFileStore(path),
//	    md2html.WithLogger(log),
//	)
//	job, err := mgr.AddJob("README.md", "")      // output: README.html
//	err = mgr.SetTitle("Handbook")
//	results := mgr.RunAll(ctx)
//
// Every mutation is saved immediately through the Store. A save failure is
// returned as an error wrapping ErrPersistence, but the change is kept in
// memory. A missing or corrupt session file loads as an empty session.
//
// RunAll processes the jobs in order and returns one Result per job; a
// failing job never stops the batch. RunAllAsync streams the same results
// over a channel. WithWorkers enables parallel runs; results keep job order
// but two jobs writing the same output race, and the last write wins.
package md2html

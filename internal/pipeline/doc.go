// Package pipeline implements the Markdown-to-HTML conversion stages.
//
// The stages are pure string transformations:
//   - Markdown preprocessing (BOM removal, line endings, UTF-8 repair)
//   - Markdown to HTML fragment conversion via Goldmark
//   - Relative link rebasing when the output lives in another directory
//   - Assembly of the standalone HTML document (title, style block, body)
//
// File access lives in the root md2html package; nothing here touches disk.
package pipeline

package pipeline

import (
	"context"
	"regexp"
	"strings"
)

const byteOrderMark = "\uFEFF"

// Line ending normalization.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor prepares raw file content for a CommonMark parser.
// It never changes the meaning of the Markdown: no dialect extensions are
// introduced here.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown applies all transformations in order.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = repairUTF8(content)
	content = strings.TrimPrefix(content, byteOrderMark)
	content = normalizeLineEndings(content)
	return content
}

// repairUTF8 replaces invalid byte sequences with U+FFFD so the output is
// always valid UTF-8, whatever the input file contained.
func repairUTF8(content string) string {
	return strings.ToValidUTF8(content, "\uFFFD")
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

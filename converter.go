package md2html

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alnah/go-md2html/internal/assets"
	"github.com/alnah/go-md2html/internal/pipeline"
)

// DefaultTitle is the document title used when Input.Title is empty.
const DefaultTitle = pipeline.DefaultTitle

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ assets.StyleLoader            = (*assets.Resolver)(nil)
)

// Converter turns Markdown text into a standalone HTML document.
// It does no file I/O apart from loading a configured style once at
// construction. A Converter is safe for concurrent use.
type Converter struct {
	cfg           converterConfig
	styles        assets.StyleLoader
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	baseCSS       string // resolved style, placed before Input.CSS
}

type converterConfig struct {
	style          string
	assetPath      string
	highlightStyle string
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithStyle prepends a named stylesheet (embedded or from the asset path)
// to every document.
func WithStyle(name string) ConverterOption {
	return func(c *Converter) {
		c.cfg.style = name
	}
}

// WithAssetPath adds a directory of custom <name>.css styles, searched
// before the embedded ones.
func WithAssetPath(dir string) ConverterOption {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithHighlightStyle selects the chroma style for fenced code blocks.
func WithHighlightStyle(name string) ConverterOption {
	return func(c *Converter) {
		c.cfg.highlightStyle = name
	}
}

// NewConverter creates a Converter. It fails only when a configured style
// or asset path cannot be loaded.
func NewConverter(opts ...ConverterOption) (*Converter, error) {
	c := &Converter{
		preprocessor: &pipeline.CommonMarkPreprocessor{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.htmlConverter == nil {
		c.htmlConverter = pipeline.NewGoldmarkConverter(c.cfg.highlightStyle)
	}

	resolver, err := assets.NewResolver(c.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	c.styles = resolver

	if c.cfg.style != "" {
		css, err := c.styles.LoadStyle(c.cfg.style)
		if err != nil {
			if errors.Is(err, assets.ErrStyleNotFound) {
				return nil, fmt.Errorf("%w: %q", ErrStyleNotFound, c.cfg.style)
			}
			return nil, fmt.Errorf("loading style %q: %w", c.cfg.style, err)
		}
		c.baseCSS = css
	}

	return c, nil
}

// Styles returns the style names WithStyle accepts.
func (c *Converter) Styles() []string {
	return c.styles.Styles()
}

// Convert renders input as an HTML document. Loose or malformed Markdown
// never fails; an error means the context ended or the renderer broke, and
// wraps ErrConversion in the latter case.
func (c *Converter) Convert(ctx context.Context, input Input) (doc string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: internal error: %v", ErrConversion, r)
		}
	}()

	md := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := c.htmlConverter.ToHTML(ctx, md)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}

	if input.SourceDir != "" && input.OutputDir != "" {
		body, err = pipeline.RebaseRelativePaths(body, input.SourceDir, input.OutputDir)
		if err != nil {
			return "", fmt.Errorf("%w: rebasing links: %v", ErrConversion, err)
		}
	}

	// Base style first, user CSS last so it can override.
	css := input.CSS
	if c.baseCSS != "" {
		if css != "" {
			css = c.baseCSS + "\n" + css
		} else {
			css = c.baseCSS
		}
	}

	return pipeline.Document{
		Title:      input.Title,
		CSS:        css,
		Stylesheet: input.Stylesheet,
		Body:       body,
	}.Render(), nil
}

var (
	defaultConverterOnce sync.Once
	defaultConverter     *Converter
	defaultConverterErr  error
)

// ToHTML converts markdown with the default Converter. Empty css means no
// <style> block and empty title means DefaultTitle.
func ToHTML(markdown, css, title string) (string, error) {
	defaultConverterOnce.Do(func() {
		defaultConverter, defaultConverterErr = NewConverter()
	})
	if defaultConverterErr != nil {
		return "", defaultConverterErr
	}
	return defaultConverter.Convert(context.Background(), Input{
		Markdown: markdown,
		CSS:      css,
		Title:    title,
	})
}

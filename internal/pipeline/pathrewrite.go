package pipeline

import (
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RebaseRelativePaths rewrites relative image and link targets in an HTML
// fragment written for sourceDir so they still resolve when the document is
// saved in outputDir. Returns the fragment unchanged when either directory is
// empty or both are the same.
//
// Rewrites:
//   - img[src]
//   - a[href] (query and #fragment suffixes are kept)
//
// Leaves alone:
//   - URLs with a scheme, protocol-relative URLs, data: URIs
//   - in-page anchors
//   - absolute paths
func RebaseRelativePaths(fragment, sourceDir, outputDir string) (string, error) {
	if sourceDir == "" || outputDir == "" {
		return fragment, nil
	}

	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}
	absOutput, err := filepath.Abs(outputDir)
	if err != nil {
		return "", err
	}
	if absSource == absOutput {
		return fragment, nil
	}

	// Tokens are copied through byte for byte; only a tag whose target
	// changes is serialized again.
	z := html.NewTokenizer(strings.NewReader(fragment))
	var buf strings.Builder
	buf.Grow(len(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return buf.String(), nil
		case html.StartTagToken, html.SelfClosingTagToken:
			// Token() unescapes attributes in place, so keep the raw tag first.
			raw := string(z.Raw())
			tok := z.Token()
			if rebaseTag(&tok, absSource, absOutput) {
				buf.WriteString(tok.String())
			} else {
				buf.WriteString(raw)
			}
		default:
			buf.Write(z.Raw())
		}
	}
}

// rebaseTag rewrites img[src] and a[href] and reports whether tok changed.
func rebaseTag(tok *html.Token, sourceDir, outputDir string) bool {
	var key string
	switch tok.DataAtom {
	case atom.Img:
		key = "src"
	case atom.A:
		key = "href"
	default:
		return false
	}

	changed := false
	for i, attr := range tok.Attr {
		if attr.Key != key || !isRelativeRef(attr.Val) {
			continue
		}
		if rebased, ok := rebaseRef(attr.Val, sourceDir, outputDir); ok && rebased != attr.Val {
			tok.Attr[i].Val = rebased
			changed = true
		}
	}
	return changed
}

// rebaseRef maps ref (relative to sourceDir) to a reference relative to
// outputDir. Falls back to a file:// URL when no relative path exists, e.g.
// across Windows volumes.
func rebaseRef(ref, sourceDir, outputDir string) (string, bool) {
	pathPart, suffix := splitRef(ref)
	decoded, err := url.PathUnescape(pathPart)
	if err != nil {
		return "", false
	}

	target := filepath.Join(sourceDir, filepath.FromSlash(decoded))
	rel, err := filepath.Rel(outputDir, target)
	if err != nil {
		return pathToFileURL(target) + suffix, true
	}

	u := url.URL{Path: filepath.ToSlash(rel)}
	return u.EscapedPath() + suffix, true
}

// splitRef separates "dir/page.md?x=1#top" into "dir/page.md" and "?x=1#top".
func splitRef(ref string) (string, string) {
	if idx := strings.IndexAny(ref, "?#"); idx != -1 {
		return ref[:idx], ref[idx:]
	}
	return ref, ""
}

// isRelativeRef reports whether ref is a relative filesystem reference.
func isRelativeRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "?") {
		return false
	}
	if strings.HasPrefix(ref, "//") || strings.HasPrefix(ref, "/") || filepath.IsAbs(ref) {
		return false
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false
	}
	return true
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}

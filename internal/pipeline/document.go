package pipeline

import (
	"html"
	"strings"
)

// DefaultTitle is used when a document has no title.
const DefaultTitle = "Document"

// Document holds the parts of a standalone HTML page.
type Document struct {
	Title      string // Escaped on render; empty means DefaultTitle
	CSS        string // Inserted verbatim into a <style> block; empty means no block
	Stylesheet string // Optional href for a <link rel="stylesheet">
	Body       string // HTML fragment placed inside <body>
}

// Render assembles the HTML5 document. The output depends only on d.
//
// CSS is not sanitized: a "</style>" inside it ends the style block early.
// The content comes from the user's own stylesheet on a local machine.
func (d Document) Render() string {
	title := d.Title
	if title == "" {
		title = DefaultTitle
	}

	var b strings.Builder
	b.Grow(len(d.Body) + len(d.CSS) + 256)

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n")
	b.WriteString("<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n")
	if d.Stylesheet != "" {
		b.WriteString("<link rel=\"stylesheet\" href=\"")
		b.WriteString(html.EscapeString(d.Stylesheet))
		b.WriteString("\">\n")
	}
	if d.CSS != "" {
		b.WriteString("<style>\n")
		b.WriteString(d.CSS)
		b.WriteString("\n</style>\n")
	}
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString(d.Body)
	b.WriteString("\n</body>\n")
	b.WriteString("</html>\n")
	return b.String()
}

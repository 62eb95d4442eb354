package render

import (
	"fmt"
	"io"
	"strings"
)

// PageData contains everything needed to render a complete HTML page.
type PageData struct {
	// Title is the page title.
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// Transport is an inline script that defines window.__joSend for the
	// surface's messaging channel. It runs after the glue script.
	Transport string

	// Styles contains inline CSS.
	Styles []string
}

// baseStyle keeps the body flush with the window.
const baseStyle = "html, body { margin: 0; padding: 0; }"

// Page renders the document as a complete HTML page.
func (d *Document) Page(page PageData) string {
	return page.Render(d)
}

// Render returns the complete page for doc. A nil doc renders an empty body.
func (page PageData) Render(doc *Document) string {
	var sb strings.Builder
	// strings.Builder never fails.
	_ = WritePage(&sb, doc, page)
	return sb.String()
}

// WritePage writes a complete HTML page for doc. A nil doc renders an
// empty body, the state of a view before its first fill.
func WritePage(w io.Writer, doc *Document, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n", escapeAttr(lang)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "  <meta charset=\"utf-8\">\n"); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "  <style>%s</style>\n", baseStyle); err != nil {
		return err
	}
	for _, style := range page.Styles {
		if _, err := fmt.Fprintf(w, "  <style>%s</style>\n", style); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "  <script>%s</script>\n", Glue()); err != nil {
		return err
	}
	if page.Transport != "" {
		if _, err := fmt.Fprintf(w, "  <script>%s</script>\n", page.Transport); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</head>\n<body>"); err != nil {
		return err
	}
	if doc != nil {
		if _, err := io.WriteString(w, doc.Markup()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

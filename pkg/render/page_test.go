package render

import (
	"strings"
	"testing"

	"github.com/joestar-dev/joestar/pkg/identity"
)

func TestPage(t *testing.T) {
	doc, err := NewRenderer(identity.NewRegistry(), nil).Render(demoTree())
	if err != nil {
		t.Fatal(err)
	}
	page := doc.Page(PageData{Title: "Main <1>", Transport: "window.__joSend = function () {};"})

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<title>Main &lt;1&gt;</title>",
		"window.__jo = {",
		`"click"`,
		"window.__joSend = function () {};",
		"<body>" + doc.Markup() + "</body>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPageEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WritePage(&sb, nil, PageData{Lang: "fr"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `<html lang="fr">`) || !strings.Contains(sb.String(), "<body></body>") {
		t.Errorf("page = %s", sb.String())
	}
}

// Package snapshot publishes rendered view pages: a self-contained HTML
// document for a view's current state, written to disk or to S3.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joestar-dev/joestar/pkg/render"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

// ErrNotFound is returned when a snapshot doesn't exist.
var ErrNotFound = errors.New("snapshot: not found")

// ErrInvalidName is returned for names that are empty or escape the store.
var ErrInvalidName = errors.New("snapshot: invalid name")

// Store is the interface for snapshot backends.
type Store interface {
	// Put writes the page under name and returns where it was written.
	Put(ctx context.Context, name string, page io.Reader) (location string, err error)

	// Get opens a stored page. The caller closes it.
	Get(ctx context.Context, name string) (io.ReadCloser, error)
}

// Page renders root as a standalone page. It uses a private identity
// registry, so it never touches a live view.
func Page(root vdom.Element, page render.PageData) (string, error) {
	doc, err := render.NewRenderer(nil, nil).Render(root)
	if err != nil {
		return "", err
	}
	return doc.Page(page), nil
}

// Publish renders root and stores it under name.
func Publish(ctx context.Context, store Store, name string, root vdom.Element, page render.PageData) (string, error) {
	html, err := Page(root, page)
	if err != nil {
		return "", fmt.Errorf("snapshot: render: %w", err)
	}
	return store.Put(ctx, name, strings.NewReader(html))
}

func checkName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

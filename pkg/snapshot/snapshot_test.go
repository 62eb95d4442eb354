package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/joestar-dev/joestar/pkg/render"
	"github.com/joestar-dev/joestar/pkg/vdom"
)

func tree() vdom.Element {
	return vdom.New(vdom.TagContainer).WithChildren(
		vdom.New(vdom.TagHeading).WithText("Hello"),
		vdom.New(vdom.TagButton).WithID("go").WithText("Go"),
	)
}

func TestPage(t *testing.T) {
	page, err := Page(tree(), render.PageData{Title: "Snap"})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	for _, want := range []string{"<title>Snap</title>", `id="go"`, "Hello"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}

	// Each call uses a fresh registry, so rendering twice is fine.
	if _, err := Page(tree(), render.PageData{}); err != nil {
		t.Errorf("second Page() error = %v", err)
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	loc, err := Publish(ctx, store, "demo/index.html", tree(), render.PageData{Title: "Demo"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if loc != filepath.Join(dir, "demo", "index.html") {
		t.Errorf("location = %q", loc)
	}

	rc, err := store.Get(ctx, "demo/index.html")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if !strings.Contains(string(b), "<title>Demo</title>") {
		t.Errorf("stored page = %q", b)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "demo"))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (no temp files)", len(entries))
	}

	if _, err := store.Get(ctx, "missing.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestInvalidNames(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	for _, name := range []string{"", "../escape.html", "/abs.html"} {
		if _, err := store.Put(context.Background(), name, strings.NewReader("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestPublishRenderError(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	bad := vdom.New(vdom.TagContainer).WithChildren(
		vdom.New(vdom.TagButton).WithID("x"),
		vdom.New(vdom.TagButton).WithID("x"),
	)
	if _, err := Publish(context.Background(), store, "bad.html", bad, render.PageData{}); err == nil {
		t.Error("Publish() error = nil for duplicate ids")
	}
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = b
	f.types[*in.Bucket+"/"+*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func TestS3Store(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	store := NewS3Store(client, "bucket", "views/")
	ctx := context.Background()

	loc, err := Publish(ctx, store, "main.html", tree(), render.PageData{Title: "Main"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if loc != "s3://bucket/views/main.html" {
		t.Errorf("location = %q", loc)
	}
	if ct := client.types["bucket/views/main.html"]; !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}

	rc, err := store.Get(ctx, "main.html")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if !strings.Contains(string(b), "<title>Main</title>") {
		t.Errorf("stored page = %q", b)
	}

	if _, err := store.Get(ctx, "nope.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nope) error = %v, want ErrNotFound", err)
	}
}

func TestNewS3Client(t *testing.T) {
	c := NewS3Client(S3Options{
		Region:      "us-east-1",
		Endpoint:    "http://localhost:9000",
		PathStyle:   true,
		AccessKeyID: "key",
	})
	o := c.Options()
	if o.Region != "us-east-1" || !o.UsePathStyle {
		t.Errorf("options = region %q path style %v", o.Region, o.UsePathStyle)
	}
	if o.BaseEndpoint == nil || *o.BaseEndpoint != "http://localhost:9000" {
		t.Errorf("BaseEndpoint = %v", o.BaseEndpoint)
	}
}

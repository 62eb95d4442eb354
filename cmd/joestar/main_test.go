package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joestar-dev/joestar/internal/config"
	"github.com/joestar-dev/joestar/internal/errors"
	"github.com/joestar-dev/joestar/pkg/driver/browser"
	"github.com/joestar-dev/joestar/pkg/driver/webview"
	"github.com/joestar-dev/joestar/pkg/snapshot"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q", out)
	}

	out, err = execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Go version:") {
		t.Errorf("version = %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	path := writeConfig(t, "driver: browser\nwindow:\n  title: From File\n")
	out, err := execute(t, "--config", path, "--log-level", "warn", "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	for _, want := range []string{"driver: browser", "title: From File", "level: warn"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestBadConfig(t *testing.T) {
	path := writeConfig(t, "driver: gtk\n")
	_, err := execute(t, "--config", path, "config")
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "J120" {
		t.Errorf("error = %v, want J120", err)
	}
}

func TestBadLogFlag(t *testing.T) {
	path := writeConfig(t, "")
	_, err := execute(t, "--config", path, "--log-format", "xml", "config")
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "J102" {
		t.Errorf("error = %v, want J102", err)
	}
}

func TestRenderToDir(t *testing.T) {
	path := writeConfig(t, "")
	dir := t.TempDir()
	out, err := execute(t, "--config", path, "render", "demo.html", "--out", dir, "--title", "Snap")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.Contains(out, "Published") {
		t.Errorf("render output = %q", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "demo.html"))
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)
	for _, want := range []string{"<title>Snap</title>", `id="button1"`, "Hello World!"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestSetOutput(t *testing.T) {
	tests := []struct {
		out        string
		wantDir    string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{out: "./site", wantDir: "./site"},
		{out: "s3://pages", wantBucket: "pages"},
		{out: "s3://pages/demo/v1", wantBucket: "pages", wantPrefix: "demo/v1"},
		{out: "s3:///x", wantErr: true},
		{out: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			var sc config.SnapshotConfig
			err := setOutput(&sc, tt.out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("setOutput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if sc.Dir != tt.wantDir || sc.S3.Bucket != tt.wantBucket || sc.S3.Prefix != tt.wantPrefix {
				t.Errorf("setOutput() = %+v", sc)
			}
		})
	}
}

func TestNewStore(t *testing.T) {
	store, err := newStore(config.SnapshotConfig{S3: config.S3Config{Bucket: "b", Region: "us-east-1"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*snapshot.S3Store); !ok {
		t.Errorf("newStore(s3) = %T", store)
	}

	store, err = newStore(config.SnapshotConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*snapshot.FileStore); !ok {
		t.Errorf("newStore(dir) = %T", store)
	}
}

func TestNewDriver(t *testing.T) {
	cfg := config.New()
	cfg.Driver = config.DriverBrowser
	drv, err := newDriver(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := drv.(*browser.Driver); !ok {
		t.Errorf("newDriver(browser) = %T", drv)
	}

	cfg.Driver = config.DriverWebview
	drv, err = newDriver(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := drv.(*webview.Driver); !ok {
		t.Errorf("newDriver(webview) = %T", drv)
	}

	cfg.Driver = "gtk"
	if _, err := newDriver(cfg, nil, nil); err == nil {
		t.Error("newDriver(gtk) error = nil")
	}
}

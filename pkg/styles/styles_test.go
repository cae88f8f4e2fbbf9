package styles

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolveInlineSheet(t *testing.T) {
	r := NewResolver()
	defer r.Close()

	s := r.Resolve(".a { color: red }")
	if s.CSS() != ".a { color: red }" {
		t.Errorf("CSS() = %q, want raw content", s.CSS())
	}

	select {
	case <-s.Ready():
	default:
		t.Error("inline sheet should be immediately ready")
	}
}

func TestResolveSheetPassthrough(t *testing.T) {
	r := NewResolver()
	defer r.Close()

	s := NewSheet("body {}")
	if got := r.Resolve(s); got != s {
		t.Error("resolving a *Sheet should return the same handle")
	}
}

func TestResolveFileAndCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.css")
	if err := os.WriteFile(path, []byte(".x{color:blue}"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver()
	defer r.Close()

	s := r.Resolve(path)
	select {
	case <-s.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("file sheet never populated")
	}
	if s.CSS() != ".x{color:blue}" {
		t.Errorf("CSS() = %q, want file content", s.CSS())
	}

	if again := r.Resolve(path); again != s {
		t.Error("same reference should return the cached handle")
	}
}

func TestFileHotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hot.css")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver()
	defer r.Close()

	s := r.Resolve(path)
	select {
	case <-s.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("file sheet never populated")
	}

	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s.CSS() == "v2" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("CSS() = %q, want reloaded v2", s.CSS())
}

func TestResolveMissingFileReportsError(t *testing.T) {
	r := NewResolver()
	defer r.Close()

	s := r.Resolve(filepath.Join(t.TempDir(), "nope.css"))
	select {
	case <-s.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("missing-file sheet never settled")
	}
	if s.Err() == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestS3WithoutClient(t *testing.T) {
	r := NewResolver()
	defer r.Close()

	s := r.Resolve("s3://bucket/theme.css")
	select {
	case <-s.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("s3 sheet never settled")
	}
	if s.Err() == nil {
		t.Error("expected an error without an S3 client")
	}
}

func TestDefaults(t *testing.T) {
	for _, tag := range []string{"root", "overlay", "popup"} {
		if !IsRootTag(tag) {
			t.Errorf("IsRootTag(%q) = false, want true", tag)
		}
		if Default(tag) == nil {
			t.Errorf("Default(%q) = nil, want sheet", tag)
		}
		if Default(tag) != Default(tag) {
			t.Errorf("Default(%q) should be a shared handle", tag)
		}
	}
	if IsRootTag("div") {
		t.Error("div is not a root tag")
	}
	if Default("div") != nil {
		t.Error("non-root tags have no default sheet")
	}
	if DisplayMode("overlay") != "fixed" {
		t.Errorf("DisplayMode(overlay) = %q, want fixed", DisplayMode("overlay"))
	}
}

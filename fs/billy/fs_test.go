package billy

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	parentfs "github.com/input-output-hk/catalyst-forge-libs/s3concurrent/fs"
)

func testMkdirAllStat(t *testing.T, fs parentfs.Filesystem, root string) {
	t.Helper()
	dir := filepath.Join(root, "a/b/c")
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	// A second call on an existing hierarchy is a no-op.
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("repeated MkdirAll failed: %v", err)
	}
	info, err := fs.Stat(filepath.Join(root, "a/b"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected directory, got file: %v", info.Name())
	}
}

func testCreateWriteReadRemove(t *testing.T, fs parentfs.Filesystem, root string) {
	t.Helper()
	p := filepath.Join(root, "file.txt")

	f, err := fs.Create(p)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.Write([]byte("hello")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	_ = f.Close()

	b, err := fs.ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(b) != "hello" {
		t.Errorf("ReadFile = %q, want %q", string(b), "hello")
	}

	ok, err := fs.Exists(p)
	if err != nil || !ok {
		t.Fatalf("Exists(%q) = %v, %v; want true, nil", p, ok, err)
	}

	if e := fs.Remove(p); e != nil {
		t.Fatalf("Remove failed: %v", e)
	}

	ok, err = fs.Exists(p)
	if err != nil || ok {
		t.Fatalf("Exists after remove = %v, %v; want false, nil", ok, err)
	}
}

func testOpenReadEOF(t *testing.T, fs parentfs.Filesystem, root string) {
	t.Helper()
	p := filepath.Join(root, "open.txt")
	if e := fs.WriteFile(p, []byte("abc"), 0o644); e != nil {
		t.Fatalf("WriteFile failed: %v", e)
	}

	f, err := fs.Open(p)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "abc" {
		t.Errorf("ReadAll = %q, want %q", data, "abc")
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 3 {
		t.Errorf("Size = %d, want 3", info.Size())
	}
}

func testRename(t *testing.T, fs parentfs.Filesystem, root string) {
	t.Helper()
	src := filepath.Join(root, "src.tmp")
	dst := filepath.Join(root, "dst.txt")
	if e := fs.WriteFile(dst, []byte("old"), 0o644); e != nil {
		t.Fatalf("WriteFile failed: %v", e)
	}
	if e := fs.WriteFile(src, []byte("new"), 0o644); e != nil {
		t.Fatalf("WriteFile failed: %v", e)
	}
	if e := fs.Rename(src, dst); e != nil {
		t.Fatalf("Rename failed: %v", e)
	}
	b, err := fs.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(b) != "new" {
		t.Errorf("ReadFile = %q, want %q", b, "new")
	}
}

func testWalk(t *testing.T, fs parentfs.Filesystem, root string) {
	t.Helper()
	base := filepath.Join(root, "walk")
	for _, name := range []string{"x/y/z.txt", "x/w.txt", "top.txt"} {
		p := filepath.Join(base, name)
		if e := fs.MkdirAll(filepath.Dir(p), 0o755); e != nil {
			t.Fatalf("MkdirAll failed: %v", e)
		}
		if e := fs.WriteFile(p, []byte("z"), 0o644); e != nil {
			t.Fatalf("WriteFile failed: %v", e)
		}
	}

	var files []string
	walkErr := fs.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			t.Fatalf("walk callback error: %v", err)
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(base, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("Walk failed: %v", walkErr)
	}
	sort.Strings(files)
	want := []string{"top.txt", "x/w.txt", "x/y/z.txt"}
	if len(files) != len(want) {
		t.Fatalf("Walk saw %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("Walk[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

// runSuite runs a battery of consistency tests against a Filesystem impl.
func runSuite(t *testing.T, fs parentfs.Filesystem, root string) {
	t.Helper()
	testMkdirAllStat(t, fs, root)
	testCreateWriteReadRemove(t, fs, root)
	testOpenReadEOF(t, fs, root)
	testRename(t, fs, root)
	testWalk(t, fs, root)
}

func TestInMemoryFS_Suite(t *testing.T) {
	runSuite(t, NewInMemoryFS(), "/tmp/x")
}

func TestBaseOSFS_Suite(t *testing.T) {
	runSuite(t, NewBaseOSFS(), t.TempDir())
}

// TestInMemoryFS_Concurrent mirrors the download path: many goroutines write
// temp files and rename them into place while others stat and walk.
func TestInMemoryFS_Concurrent(t *testing.T) {
	fs := NewInMemoryFS()
	const root, workers, files = "/dl", 16, 20
	if err := fs.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers*files)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range files {
				final := filepath.Join(root, fmt.Sprintf("w%d/f%d", w, i))
				tmp := final + ".part"
				if err := fs.MkdirAll(filepath.Dir(final), 0o755); err != nil {
					errs <- err
					return
				}
				f, err := fs.Create(tmp)
				if err != nil {
					errs <- err
					return
				}
				if _, err := f.Write([]byte(final)); err != nil {
					errs <- err
				}
				_ = f.Close()
				if err := fs.Rename(tmp, final); err != nil {
					errs <- err
				}
				_, _ = fs.Stat(filepath.Join(root, fmt.Sprintf("w%d/f%d", (w+1)%workers, i)))
				_ = fs.Walk(filepath.Join(root, fmt.Sprintf("w%d", w)), func(string, os.FileInfo, error) error {
					return nil
				})
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent operation failed: %v", err)
	}

	for w := range workers {
		for i := range files {
			p := filepath.Join(root, fmt.Sprintf("w%d/f%d", w, i))
			b, err := fs.ReadFile(p)
			if err != nil {
				t.Fatalf("ReadFile(%q) failed: %v", p, err)
			}
			if string(b) != p {
				t.Errorf("ReadFile(%q) = %q", p, b)
			}
		}
	}
}

package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func TestDefaultFileSystemAdapter_NormalizeNewlines(t *testing.T) {
	adapter := NewDefaultFileSystemAdapter()
	tests := []struct {
		name    string
		content []byte
		want    []byte
	}{
		{"empty", []byte(""), []byte("")},
		{"no newlines", []byte("hello world"), []byte("hello world")},
		{"lf only", []byte("hello\nworld"), []byte("hello\nworld")},
		{"crlf", []byte("hello\r\nworld"), []byte("hello\nworld")},
		{"cr only", []byte("hello\rworld"), []byte("hello\nworld")},
		{"mixed newlines", []byte("line1\r\nline2\rline3\nline4"), []byte("line1\nline2\nline3\nline4")},
		{"multiple crlf", []byte("hello\r\n\r\nworld"), []byte("hello\n\nworld")},
		{"trailing crlf", []byte("hello\r\n"), []byte("hello\n")},
		{"trailing cr", []byte("hello\r"), []byte("hello\n")},
		{"leading crlf", []byte("\r\nhello"), []byte("\nhello")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.NormalizeNewlines(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DefaultFileSystemAdapter.NormalizeNewlines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultFileSystemAdapter_Stat(t *testing.T) {
	adapter := NewDefaultFileSystemAdapter()
	dir := t.TempDir()
	file := filepath.Join(dir, "a.csv")
	if err := os.WriteFile(file, []byte("x,y\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := adapter.Stat(file)
	if err != nil {
		t.Fatalf("Stat(file) failed: %v", err)
	}
	if !stats.IsRegular || stats.Size != 4 {
		t.Errorf("unexpected file stats: %+v", stats)
	}

	stats, err = adapter.Stat(dir)
	if err != nil {
		t.Fatalf("Stat(dir) failed: %v", err)
	}
	if stats.IsRegular {
		t.Errorf("unexpected dir stats: %+v", stats)
	}

	_, err = adapter.Stat(filepath.Join(dir, "missing"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestDefaultFileSystemAdapter_Stat_NotExist(t *testing.T) {
	adapter := NewDefaultFileSystemAdapter()
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing entry", filepath.Join(dir, "missing")},
		{"missing parent", filepath.Join(dir, "missing", "a.csv")},
		{"beneath a regular file", filepath.Join(file, "sub")},
		{"nul byte", dir + "/a\x00b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.Stat(tt.path)
			if !errors.Is(err, fs.ErrNotExist) {
				t.Fatalf("expected fs.ErrNotExist, got %v", err)
			}
			var notExist *NotExistError
			if !errors.As(err, &notExist) || notExist.Path != tt.path {
				t.Errorf("expected *NotExistError for %q, got %#v", tt.path, err)
			}
		})
	}
}

func TestDefaultFileSystemAdapter_ListDirNames(t *testing.T) {
	adapter := NewDefaultFileSystemAdapter()
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.csv", ".hidden.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "nested.csv"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := adapter.ListDirNames(dir)
	if err != nil {
		t.Fatalf("ListDirNames failed: %v", err)
	}
	sort.Strings(names)
	want := []string{".hidden.csv", "a.csv", "b.csv", "sub"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ListDirNames() = %v, want %v", names, want)
	}

	if _, err := adapter.ListDirNames(filepath.Join(dir, "a.csv")); err == nil {
		t.Error("expected error listing a regular file")
	}
	if _, err := adapter.ListDirNames(filepath.Join(dir, "missing")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestDefaultFileSystemAdapter_ReadFileBytes(t *testing.T) {
	adapter := NewDefaultFileSystemAdapter()
	file := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(file, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := adapter.ReadFileBytes(file)
	if err != nil {
		t.Fatalf("ReadFileBytes failed: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("ReadFileBytes() = %q, want %q", got, "hello")
	}
}

package service

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCollectUnitFiles_OnlyUnitExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.tmplu"), "")
	writeFile(t, filepath.Join(dir, "b.yaml"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")

	reader := NewFileReader()
	files, err := reader.CollectUnitFiles([]string{dir}, true, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.tmplu" {
		t.Fatalf("expected only a.tmplu, got %v", files)
	}
}

func TestCollectUnitFiles_RecursionFlag(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.tmplu"), "")
	writeFile(t, filepath.Join(dir, "nested", "deep.tmplu"), "")

	reader := NewFileReader()

	flat, err := reader.CollectUnitFiles([]string{dir}, false, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flat) != 1 {
		t.Fatalf("non-recursive walk must stop at the top level, got %v", flat)
	}

	deep, err := reader.CollectUnitFiles([]string{dir}, true, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deep) != 2 {
		t.Fatalf("recursive walk must include nested units, got %v", deep)
	}
}

func TestCollectUnitFiles_SkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "visible.tmplu"), "")
	writeFile(t, filepath.Join(dir, ".cache", "hidden.tmplu"), "")

	reader := NewFileReader()
	files, err := reader.CollectUnitFiles([]string{dir}, true, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "visible.tmplu" {
		t.Fatalf("expected hidden directories skipped, got %v", files)
	}
}

func TestCollectUnitFiles_Patterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "core.tmplu"), "")
	writeFile(t, filepath.Join(dir, "core_test.tmplu"), "")
	writeFile(t, filepath.Join(dir, "gen", "aux.tmplu"), "")

	reader := NewFileReader()

	included, err := reader.CollectUnitFiles([]string{dir}, true, []string{"core*.tmplu"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(included) != 2 {
		t.Fatalf("include pattern should match both core units, got %v", included)
	}

	excluded, err := reader.CollectUnitFiles([]string{dir}, true, nil, []string{"*_test.tmplu", "**/gen/**"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(excluded) != 1 || filepath.Base(excluded[0]) != "core.tmplu" {
		t.Fatalf("exclude patterns should leave only core.tmplu, got %v", excluded)
	}
}

func TestCollectUnitFiles_ExplicitFilePath(t *testing.T) {
	dir := t.TempDir()
	unit := filepath.Join(dir, "one.tmplu")
	writeFile(t, unit, "")
	other := filepath.Join(dir, "one.yaml")
	writeFile(t, other, "")

	reader := NewFileReader()
	files, err := reader.CollectUnitFiles([]string{unit, other}, false, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0] != unit {
		t.Fatalf("explicit non-unit files are filtered out, got %v", files)
	}
}

func TestCollectUnitFiles_MissingPath(t *testing.T) {
	reader := NewFileReader()
	if _, err := reader.CollectUnitFiles([]string{"/does/not/exist"}, false, nil, nil); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	unit := filepath.Join(dir, "u.tmplu")
	writeFile(t, unit, "")

	reader := NewFileReader()
	if ok, err := reader.FileExists(unit); err != nil || !ok {
		t.Errorf("expected existing file reported, got ok=%v err=%v", ok, err)
	}
	if ok, err := reader.FileExists(dir); err != nil || ok {
		t.Errorf("a directory is not a file, got ok=%v err=%v", ok, err)
	}
	if ok, err := reader.FileExists(filepath.Join(dir, "missing.tmplu")); err != nil || ok {
		t.Errorf("expected missing file reported without error, got ok=%v err=%v", ok, err)
	}
}

func TestValidatePaths(t *testing.T) {
	dir := t.TempDir()
	reader := NewFileReader()

	if err := reader.ValidatePaths([]string{dir}); err != nil {
		t.Errorf("unexpected error for an existing path: %v", err)
	}
	if err := reader.ValidatePaths([]string{filepath.Join(dir, "gone")}); err == nil {
		t.Error("expected an error for a missing path")
	}
}

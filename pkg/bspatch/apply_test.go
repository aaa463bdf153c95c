package bspatch

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestApplyPlainFiles(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeTemp(t, dir, "old", []byte("aaaa"))
	newPath := filepath.Join(dir, "new")
	patch := buildPatch(t, []ctrlTriple{{X: 4, Y: 0, Z: 0}}, []byte{0, 1, 2, 3}, nil)
	patchPath := writeTemp(t, dir, "patch", patch)

	if err := Apply(Options{OldPath: oldPath, NewPath: newPath, PatchPath: patchPath}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, err := os.ReadFile(newPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "abcd" {
		t.Fatalf("got %q, want %q", got, "abcd")
	}
}

func TestApplyRejectsOneSidedExtents(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeTemp(t, dir, "old", []byte("aaaa"))
	newPath := filepath.Join(dir, "new")
	patch := buildPatch(t, []ctrlTriple{{X: 4, Y: 0, Z: 0}}, []byte{0, 1, 2, 3}, nil)
	patchPath := writeTemp(t, dir, "patch", patch)

	err := Apply(Options{
		OldPath:    oldPath,
		NewPath:    newPath,
		PatchPath:  patchPath,
		OldExtents: "0:4",
	})
	if err == nil {
		t.Fatalf("expected error when only old extents are supplied")
	}
}

func TestApplyWithExtentsUsesOldPathNotNewPath(t *testing.T) {
	dir := t.TempDir()
	// The historical bug opened new_filename as the old source; this test
	// pins the fix by making old and new distinct and disjoint in content.
	oldPath := writeTemp(t, dir, "old", []byte("aaaa"))
	newPath := writeTemp(t, dir, "new", []byte("zzzzzzzz")) // pre-existing, unrelated contents
	patch := buildPatch(t, []ctrlTriple{{X: 4, Y: 0, Z: 0}}, []byte{0, 1, 2, 3}, nil)
	patchPath := writeTemp(t, dir, "patch", patch)

	err := Apply(Options{
		OldPath:    oldPath,
		NewPath:    newPath,
		PatchPath:  patchPath,
		OldExtents: "0:4",
		NewExtents: "0:4",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, err := os.ReadFile(newPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(got, []byte("abcd")) {
		t.Fatalf("got %q, want prefix %q (old path must have been read, not new path)", got, "abcd")
	}
}

func TestApplyZeroNewSizeCreatesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeTemp(t, dir, "old", nil)
	newPath := filepath.Join(dir, "new")
	patch := buildPatch(t, nil, nil, nil)
	patchPath := writeTemp(t, dir, "patch", patch)

	if err := Apply(Options{OldPath: oldPath, NewPath: newPath, PatchPath: patchPath}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	fi, err := os.Stat(newPath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if fi.Size() != 0 {
		t.Fatalf("expected empty new file, got size %d", fi.Size())
	}
}

package marmadetector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectBatch(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, name := range []string{"a.png", "b.png", "c.png", "d.png"} {
		p := filepath.Join(dir, name)
		if i%2 == 0 {
			writePNG(t, p, createSoleImage())
		} else {
			writePNG(t, p, createUniformImage())
		}
		paths = append(paths, p)
	}
	paths = append(paths, filepath.Join(dir, "missing.png"))

	done := 0
	items := New().DetectBatch(context.Background(), paths, 3, func(BatchItem) { done++ })

	if len(items) != len(paths) {
		t.Fatalf("expected %d items, got %d", len(paths), len(items))
	}
	if done != len(paths) {
		t.Errorf("onDone called %d times, want %d", done, len(paths))
	}
	for i, item := range items {
		if item.Path != paths[i] {
			t.Errorf("item %d path %s, want %s", i, item.Path, paths[i])
		}
		wantOK := i == 0 || i == 2
		if item.Result.OK != wantOK {
			t.Errorf("item %d ok = %v, want %v (%s)", i, item.Result.OK, wantOK, item.Result.Error)
		}
	}
	if items[4].Result.Error != "file not found" {
		t.Errorf("missing file error = %q", items[4].Result.Error)
	}
}

func TestDetectBatchCancelled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	writePNG(t, p, createSoleImage())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := New().DetectBatch(ctx, []string{p, p}, 0, nil)
	for _, item := range items {
		if item.Result.OK || item.Result.ErrorType != "internal" {
			t.Errorf("cancelled item should fail, got %+v", item.Result)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "a_annotated.jpg")); !os.IsNotExist(err) {
		t.Error("cancelled batch should not render")
	}
}

func TestDetectBatchEmpty(t *testing.T) {
	items := New().DetectBatch(context.Background(), nil, 4, nil)
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

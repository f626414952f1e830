package drivers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalFSDriver_DirectoryHashing(t *testing.T) {
	tempDir := t.TempDir()

	driver, err := NewLocalFSDriver(tempDir, "/exports")
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}

	ctx := context.Background()
	key := "abcdef123456.json"
	content := []byte(`[{"id":"1"}]`)

	if err := driver.Save(ctx, key, bytes.NewReader(content), "application/json"); err != nil {
		t.Errorf("Save failed: %v", err)
	}

	// key "abcdef123456.json" should be at ab/cd/abcdef123456.json
	fullPath := filepath.Join(tempDir, "ab", "cd", key)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		t.Errorf("file not found at hashed path: %s", fullPath)
	}

	reader, contentType, err := driver.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got, _ := io.ReadAll(reader)
	reader.Close()

	if !bytes.Equal(got, content) {
		t.Errorf("expected %s, got %s", content, got)
	}
	if contentType != "application/json" {
		t.Errorf("expected content type application/json, got %s", contentType)
	}

	url, err := driver.GenerateURL(ctx, key, 0)
	if err != nil {
		t.Errorf("GenerateURL failed: %v", err)
	}
	if url != "/exports/"+key {
		t.Errorf("unexpected URL: %s", url)
	}

	if err := driver.Delete(ctx, key); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, err := os.Stat(fullPath); !os.IsNotExist(err) {
		t.Error("file still exists after deletion")
	}
}

func TestLocalFSDriver_Overwrite(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir(), "")
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}
	ctx := context.Background()

	for _, body := range []string{"first", "second"} {
		if err := driver.Save(ctx, "TWL_DB_V1.json", strings.NewReader(body), "application/json"); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	reader, _, err := driver.Get(ctx, "TWL_DB_V1.json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer reader.Close()
	got, _ := io.ReadAll(reader)
	if string(got) != "second" {
		t.Errorf("expected last write to win, got %q", got)
	}
}

func TestLocalFSDriver_MissingKey(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir(), "")
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}
	ctx := context.Background()

	if _, _, err := driver.Get(ctx, "nothing-here"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
	if err := driver.Delete(ctx, "nothing-here"); err != nil {
		t.Errorf("Delete of a missing key should succeed, got %v", err)
	}
}

func TestLocalFSDriver_RejectsPathKeys(t *testing.T) {
	driver, err := NewLocalFSDriver(t.TempDir(), "")
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}

	for _, key := range []string{"", "..", "../escape.json", `a\b`} {
		if err := driver.Save(context.Background(), key, strings.NewReader("x"), "text/plain"); err == nil {
			t.Errorf("expected key %q to be rejected", key)
		}
	}
}

// Package testsupport holds fixture and golden-file helpers shared by the
// package tests.
package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/schema/loader"
	"github.com/MarJC5/slabs/pkg/ui"
)

// UpdateEnv names the environment variable that rewrites golden files.
const UpdateEnv = "UPDATE_GOLDENS"

// LoadDocument reads a schema fixture (JSON, YAML or CUE).
func LoadDocument(t *testing.T, path string) schema.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T, so
// fixtures can be loaded from TestMain or setup helpers.
func LoadDocumentFromPath(path string) (schema.Document, error) {
	if path == "" {
		return schema.Document{}, errors.New("testsupport: document path is required")
	}
	doc, err := loader.New().Load(context.Background(), schema.SourceFromFile(path))
	if err != nil {
		return schema.Document{}, fmt.Errorf("testsupport: load %s: %w", path, err)
	}
	return doc, nil
}

// MustFields decodes an inline JSON field map.
func MustFields(t *testing.T, raw string) schema.Fields {
	t.Helper()

	var defs schema.Fields
	if err := json.Unmarshal([]byte(raw), &defs); err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	return defs
}

// RenderHTML serialises a rendered tree.
func RenderHTML(t *testing.T, node *ui.Node) string {
	t.Helper()

	var buf bytes.Buffer
	if err := node.WriteHTML(&buf); err != nil {
		t.Fatalf("write html: %v", err)
	}
	return buf.String()
}

// AssertGoldenJSON compares got, encoded as JSON, with the golden file at
// path. Both sides are decoded before comparison so formatting does not
// matter. With UPDATE_GOLDENS set the golden is rewritten instead.
func AssertGoldenJSON(t *testing.T, path string, got any) {
	t.Helper()

	payload, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if writeMaybeGolden(t, path, append(payload, '\n')) {
		return
	}

	var want, have any
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("unmarshal golden %s: %v", path, err)
	}
	if err := json.Unmarshal(payload, &have); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}

// AssertGoldenString compares got with the golden file at path byte for byte.
func AssertGoldenString(t *testing.T, path, got string) {
	t.Helper()

	if writeMaybeGolden(t, path, []byte(got)) {
		return
	}
	if diff := cmp.Diff(string(MustReadGolden(t, path)), got); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// writeMaybeGolden updates a golden file when UPDATE_GOLDENS is set. It
// returns true if the golden was written.
func writeMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv(UpdateEnv) == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

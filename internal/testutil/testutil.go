// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CentroidHeader is the first record of a centroid dump over a 100x50
// image whose tracking window covers the whole frame.
const CentroidHeader = "{'original_file': 'f0.png', 'segmented_file': 's0.png', " +
	"'image_size': (100, 50), 'window_size': (0, 100, 0, 50), 'centroids': []}"

// CentroidDump is a short dump in which one blob crosses the window from
// right to left. With the default gutters it yields a single three-point
// trail: (95,25) (60,25) (30,25).
const CentroidDump = CentroidHeader + "\n" +
	"{'original_file': 'f1.png', 'segmented_file': 's1.png', 'centroids': [(95, 25)]}\n" +
	"{'original_file': 'f2.png', 'segmented_file': 's2.png', 'centroids': [(60, 25), ]}\n" +
	"{'original_file': 'f3.png', 'segmented_file': 's3.png', 'centroids': []}\n" +
	"{'original_file': 'f4.png', 'segmented_file': 's4.png', 'centroids': [(30, 25)]}\n" +
	"{'original_file': 'f5.png', 'segmented_file': 's5.png', 'centroids': [(5, 25)]}\n"

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorContains fails the test unless err is non-nil and its message
// contains substr.
func AssertErrorContains(t testing.TB, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Fatalf("error %q does not contain %q", err, substr)
	}
}

// WriteTempFile writes content to name inside a fresh temporary directory
// and returns the full path.
func WriteTempFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

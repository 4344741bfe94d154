// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDownload_WritesTempFileInDir(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "minioctl/test" {
			t.Errorf("User-Agent = %q, want minioctl/test", got)
		}
		_, _ = w.Write([]byte("binary payload"))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	client := NewClient(WithUserAgent("minioctl/test"))

	path, err := client.Download(context.Background(), srv.URL, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("temp file %s not in target dir %s", path, dir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != "binary payload" {
		t.Errorf("content = %q", data)
	}
}

func TestDownload_Non200IsError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	client := NewClient()
	_, err := client.Download(context.Background(), srv.URL, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 error, got %v", err)
	}
}

func TestDownload_CanceledContext(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient()
	if _, err := client.Download(ctx, srv.URL, t.TempDir()); err == nil {
		t.Error("expected error for canceled context")
	}
}

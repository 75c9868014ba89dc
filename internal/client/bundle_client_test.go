package client

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/diary-api/pkg/config"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, contents := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestBundleClientLogin(t *testing.T) {
	archive := zipOf(t, map[string]string{
		"time_table.db": "timetable",
		"home_works.db": "homework",
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/process", r.URL.Path)

		var req struct {
			Message []string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"ivanov", "secret"}, req.Message)

		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	c := NewBundleClient(config.ClientConfig{ServerURL: srv.URL, Timeout: 5 * time.Second}, nil)

	destDir := t.TempDir()
	require.NoError(t, c.Login(context.Background(), "ivanov", "secret", destDir))

	got, err := os.ReadFile(filepath.Join(destDir, "time_table.db"))
	require.NoError(t, err)
	assert.Equal(t, []byte("timetable"), got)

	got, err = os.ReadFile(filepath.Join(destDir, "home_works.db"))
	require.NoError(t, err)
	assert.Equal(t, []byte("homework"), got)
}

func TestBundleClientSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_CREDENTIALS","message":"invalid login or password","status":401}}`))
	}))
	defer srv.Close()

	c := NewBundleClient(config.ClientConfig{ServerURL: srv.URL, Timeout: 5 * time.Second}, nil)

	err := c.Login(context.Background(), "ivanov", "wrong", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid login or password")
}

func TestBundleClientRejectsCorruptBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("definitely not a zip"))
	}))
	defer srv.Close()

	c := NewBundleClient(config.ClientConfig{ServerURL: srv.URL, Timeout: 5 * time.Second}, nil)

	destDir := t.TempDir()
	err := c.Login(context.Background(), "ivanov", "secret", destDir)
	require.Error(t, err)

	entries, readErr := os.ReadDir(destDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

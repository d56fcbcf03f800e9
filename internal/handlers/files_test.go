package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillflow/internal/config"
	"skillflow/internal/workflow"
)

func fileStep(action workflow.FileAction, path string) workflow.Step {
	return workflow.Step{ID: "f1", Label: string(action), Action: workflow.File{Action: action, Path: path}}
}

func TestFileRunner_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("release notes"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "downloads")
	runner := NewFileRunner(config.FilesConfig{DownloadDir: dir}, NewHTTPClient(config.HTTPConfig{}, nil), nil, nil)

	out, err := runner.Handle(context.Background(), fileStep(workflow.FileDownload, srv.URL+"/files/notes.txt"))

	require.NoError(t, err)
	result := out.(FileResult)
	assert.Equal(t, filepath.Join(dir, "notes.txt"), result.Path)
	assert.EqualValues(t, len("release notes"), result.Bytes)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, "release notes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileRunner_DownloadErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	runner := NewFileRunner(config.FilesConfig{DownloadDir: dir}, NewHTTPClient(config.HTTPConfig{}, nil), nil, nil)

	_, err := runner.Handle(context.Background(), fileStep(workflow.FileDownload, srv.URL+"/missing.zip"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHTTPStatus))
	_, statErr := os.Stat(filepath.Join(dir, "missing.zip"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileRunner_DownloadInvalidURL(t *testing.T) {
	runner := NewFileRunner(config.FilesConfig{}, NewHTTPClient(config.HTTPConfig{}, nil), nil, nil)

	_, err := runner.Handle(context.Background(), fileStep(workflow.FileDownload, "./local/path"))

	assert.Error(t, err)
}

func TestFileRunner_Upload(t *testing.T) {
	var gotName, gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		b, _ := io.ReadAll(file)
		gotName = header.Filename
		gotContent = string(b)
	}))
	defer srv.Close()

	src := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(src, []byte("a,b\n1,2\n"), 0644))

	runner := NewFileRunner(config.FilesConfig{UploadURL: srv.URL}, NewHTTPClient(config.HTTPConfig{}, nil), nil, nil)
	out, err := runner.Handle(context.Background(), fileStep(workflow.FileUpload, src))

	require.NoError(t, err)
	assert.EqualValues(t, 8, out.(FileResult).Bytes)
	assert.Equal(t, "report.csv", gotName)
	assert.Equal(t, "a,b\n1,2\n", gotContent)
}

func TestFileRunner_UploadWithoutURL(t *testing.T) {
	runner := NewFileRunner(config.FilesConfig{}, NewHTTPClient(config.HTTPConfig{}, nil), nil, nil)

	_, err := runner.Handle(context.Background(), fileStep(workflow.FileUpload, "/tmp/x"))

	assert.True(t, errors.Is(err, ErrNoUploadURL))
}

func TestFileRunner_UploadMissingFile(t *testing.T) {
	runner := NewFileRunner(config.FilesConfig{UploadURL: "http://127.0.0.1:1"}, NewHTTPClient(config.HTTPConfig{}, nil), nil, nil)

	_, err := runner.Handle(context.Background(), fileStep(workflow.FileUpload, filepath.Join(t.TempDir(), "nope")))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestFileRunner_Open(t *testing.T) {
	var opened []string
	open := func(target string) error {
		opened = append(opened, target)
		return nil
	}
	runner := NewFileRunner(config.FilesConfig{}, NewHTTPClient(config.HTTPConfig{}, nil), open, nil)

	out, err := runner.Handle(context.Background(), fileStep(workflow.FileOpen, "/tmp/report.pdf"))

	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/report.pdf"}, opened)
	assert.Equal(t, "opened /tmp/report.pdf", out.(FileResult).String())
}

func TestWebOpener(t *testing.T) {
	var opened string
	opener := NewWebOpener(func(target string) error {
		opened = target
		return nil
	}, nil)

	_, err := opener.Handle(context.Background(), workflow.Step{ID: "w", Action: workflow.Web{URL: "https://example.com"}})

	require.NoError(t, err)
	assert.Equal(t, "https://example.com", opened)
}

func TestWebOpener_Error(t *testing.T) {
	opener := NewWebOpener(func(string) error { return errors.New("no browser") }, nil)

	_, err := opener.Handle(context.Background(), workflow.Step{ID: "w", Action: workflow.Web{URL: "https://example.com"}})

	assert.EqualError(t, err, "no browser")
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"skillflow/internal/config"
	"skillflow/internal/workflow"
)

// ErrNoUploadURL is returned by upload steps when files.upload_url is unset.
var ErrNoUploadURL = errors.New("files.upload_url is not configured")

// FileResult is the output of a file step.
type FileResult struct {
	Action workflow.FileAction `json:"action" yaml:"action"`
	Path   string              `json:"path" yaml:"path"`
	Bytes  int64               `json:"bytes,omitempty" yaml:"bytes,omitempty"`
}

func (r FileResult) String() string {
	switch r.Action {
	case workflow.FileDownload:
		return fmt.Sprintf("downloaded %d bytes to %s", r.Bytes, r.Path)
	case workflow.FileUpload:
		return fmt.Sprintf("uploaded %d bytes from %s", r.Bytes, r.Path)
	}
	return "opened " + r.Path
}

// FileRunner performs file steps: downloading a URL into the download
// directory, uploading a local file, or opening a path.
type FileRunner struct {
	http        *HTTPClient
	open        OpenFunc
	downloadDir string
	uploadURL   string
	logger      *zap.SugaredLogger
}

// NewFileRunner creates a runner. Requests go through client so they share its
// timeout and headers. A nil open uses [SystemOpen].
func NewFileRunner(cfg config.FilesConfig, client *HTTPClient, open OpenFunc, logger *zap.SugaredLogger) *FileRunner {
	if open == nil {
		open = SystemOpen
	}
	dir := cfg.DownloadDir
	if dir == "" {
		dir = "."
	}
	return &FileRunner{
		http:        client,
		open:        open,
		downloadDir: dir,
		uploadURL:   cfg.UploadURL,
		logger:      nopIfNil(logger),
	}
}

// Handle dispatches on the file action.
func (f *FileRunner) Handle(ctx context.Context, step workflow.Step) (any, error) {
	action, ok := step.Action.(workflow.File)
	if !ok {
		return nil, unexpectedAction(step)
	}

	switch action.Action {
	case workflow.FileDownload:
		return f.download(ctx, action.Path)
	case workflow.FileUpload:
		return f.upload(ctx, action.Path)
	case workflow.FileOpen:
		f.logger.Debugw("opening file", "path", action.Path)
		if err := f.open(action.Path); err != nil {
			return nil, err
		}
		return FileResult{Action: workflow.FileOpen, Path: action.Path}, nil
	}
	return nil, fmt.Errorf("unsupported file action %q", action.Action)
}

// download fetches rawURL into the download directory, naming the file after
// the last URL path segment. The file appears only once fully written.
func (f *FileRunner) download(ctx context.Context, rawURL string) (FileResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return FileResult{}, fmt.Errorf("invalid download url %q", rawURL)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		name = "download"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range f.http.headers {
		req.Header.Set(k, v)
	}

	f.logger.Debugw("downloading", "url", rawURL, "dir", f.downloadDir)
	resp, err := f.http.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return FileResult{}, ctxErr
		}
		return FileResult{}, fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return FileResult{}, fmt.Errorf("%w: download %s returned %d", ErrHTTPStatus, rawURL, resp.StatusCode)
	}

	if err := os.MkdirAll(f.downloadDir, 0755); err != nil {
		return FileResult{}, fmt.Errorf("failed to create download dir: %w", err)
	}

	dest := filepath.Join(f.downloadDir, name)
	tmp, err := os.CreateTemp(f.downloadDir, "."+name+".*.part")
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		return FileResult{}, fmt.Errorf("failed to write %s: %w", dest, errors.Join(copyErr, closeErr))
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return FileResult{}, fmt.Errorf("failed to move download into place: %w", err)
	}

	return FileResult{Action: workflow.FileDownload, Path: dest, Bytes: n}, nil
}

// upload posts the file at p as multipart form field "file".
func (f *FileRunner) upload(ctx context.Context, p string) (FileResult, error) {
	if f.uploadURL == "" {
		return FileResult{}, ErrNoUploadURL
	}

	file, err := os.Open(p)
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if info.IsDir() {
		return FileResult{}, fmt.Errorf("cannot upload directory %s", p)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(p))
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.uploadURL, pr)
	if err != nil {
		pr.Close()
		return FileResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range f.http.headers {
		if !strings.EqualFold(k, "Content-Type") {
			req.Header.Set(k, v)
		}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	f.logger.Debugw("uploading", "path", p, "url", f.uploadURL)
	resp, err := f.http.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return FileResult{}, ctxErr
		}
		return FileResult{}, fmt.Errorf("upload %s: %w", p, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return FileResult{}, fmt.Errorf("%w: upload %s returned %d", ErrHTTPStatus, p, resp.StatusCode)
	}
	return FileResult{Action: workflow.FileUpload, Path: p, Bytes: info.Size()}, nil
}

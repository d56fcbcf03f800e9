package handlers

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"

	"skillflow/internal/workflow"
)

// OpenFunc hands a URL or path to whatever displays it.
type OpenFunc func(target string) error

// SystemOpen opens target with the platform's default application and does
// not wait for it to exit.
func SystemOpen(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// WebOpener handles web steps by opening their URL.
type WebOpener struct {
	open   OpenFunc
	logger *zap.SugaredLogger
}

// NewWebOpener creates an opener. A nil open uses [SystemOpen].
func NewWebOpener(open OpenFunc, logger *zap.SugaredLogger) *WebOpener {
	if open == nil {
		open = SystemOpen
	}
	return &WebOpener{open: open, logger: nopIfNil(logger)}
}

// Handle opens the step's URL. Navigation is fire-and-forget, so the step
// succeeds as soon as the opener accepts the URL.
func (w *WebOpener) Handle(ctx context.Context, step workflow.Step) (any, error) {
	action, ok := step.Action.(workflow.Web)
	if !ok {
		return nil, unexpectedAction(step)
	}
	w.logger.Debugw("opening url", "url", action.URL)
	return nil, w.open(action.URL)
}

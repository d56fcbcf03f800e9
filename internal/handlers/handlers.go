// Package handlers implements the side effects behind each workflow step kind.
//
// Each handler satisfies [executor.Handler] for one [workflow.Kind]:
//   - [TerminalRunner] runs shell commands and records their output in a [SessionLog]
//   - [HTTPClient] sends API requests
//   - [DBClient] runs queries against named sqlite or postgres connections
//   - [WebOpener] opens URLs in the system browser
//   - [FileRunner] downloads, uploads and opens files
//   - [Poller] waits for log, file and API conditions
//
// [NewSet] wires all of them from a [config.Config].
package handlers

import (
	"fmt"

	"go.uber.org/zap"

	"skillflow/internal/config"
	"skillflow/internal/executor"
	"skillflow/internal/workflow"
)

// Set holds one handler per step kind, sharing a session log and HTTP client.
type Set struct {
	Sessions *SessionLog
	Terminal *TerminalRunner
	HTTP     *HTTPClient
	DB       *DBClient
	Web      *WebOpener
	Files    *FileRunner
	Poller   *Poller
}

// Options overrides parts of a [Set] built by [NewSet].
type Options struct {
	// Open replaces [SystemOpen] for web and file open steps.
	Open OpenFunc
}

// NewSet builds every handler from cfg. Call [Set.Close] when done to release
// database connections.
func NewSet(cfg *config.Config, logger *zap.SugaredLogger, opts Options) *Set {
	logger = nopIfNil(logger)
	sessions := NewSessionLog()
	client := NewHTTPClient(cfg.HTTP, logger.Named("api"))
	terminal := NewTerminalRunner(cfg.Terminal, sessions, logger.Named("terminal"))

	return &Set{
		Sessions: sessions,
		Terminal: terminal,
		HTTP:     client,
		DB:       NewDBClient(cfg, logger.Named("db")),
		Web:      NewWebOpener(opts.Open, logger.Named("web")),
		Files:    NewFileRunner(cfg.Files, client, opts.Open, logger.Named("file")),
		Poller:   NewPoller(sessions, terminal.Session(), client, cfg.Execution.PollInterval, logger.Named("wait")),
	}
}

// Handlers returns the kind to handler map the executor dispatches on.
func (s *Set) Handlers() executor.Handlers {
	return executor.Handlers{
		workflow.KindTerminal: s.Terminal,
		workflow.KindAPI:      s.HTTP,
		workflow.KindDB:       s.DB,
		workflow.KindWeb:      s.Web,
		workflow.KindFile:     s.Files,
		workflow.KindWait:     s.Poller,
	}
}

// Close releases resources held by the handlers.
func (s *Set) Close() error {
	return s.DB.Close()
}

func nopIfNil(logger *zap.SugaredLogger) *zap.SugaredLogger {
	if logger == nil {
		return zap.NewNop().Sugar()
	}
	return logger
}

func unexpectedAction(step workflow.Step) error {
	return fmt.Errorf("step %s: unexpected %s action", step.ID, step.Kind())
}

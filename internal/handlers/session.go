package handlers

import (
	"io"
	"strings"
	"sync"
)

// SessionLog accumulates the output of terminal commands per session.
//
// "wait log_contains" steps search the log of the configured session, so a
// command started by an earlier step can be watched by a later one. A
// SessionLog is safe for concurrent use.
type SessionLog struct {
	mu       sync.RWMutex
	sessions map[string]*strings.Builder
}

// NewSessionLog creates an empty SessionLog.
func NewSessionLog() *SessionLog {
	return &SessionLog{sessions: make(map[string]*strings.Builder)}
}

// Append adds p to the named session.
func (l *SessionLog) Append(session string, p []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.sessions[session]
	if !ok {
		b = &strings.Builder{}
		l.sessions[session] = b
	}
	b.Write(p)
}

// Contains reports whether the session output includes substr.
func (l *SessionLog) Contains(session, substr string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.sessions[session]
	if !ok {
		return false
	}
	return strings.Contains(b.String(), substr)
}

// Text returns everything written to the session so far.
func (l *SessionLog) Text(session string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if b, ok := l.sessions[session]; ok {
		return b.String()
	}
	return ""
}

// Writer returns an io.Writer that appends to the named session.
func (l *SessionLog) Writer(session string) io.Writer {
	return &sessionWriter{log: l, session: session}
}

type sessionWriter struct {
	log     *SessionLog
	session string
}

func (w *sessionWriter) Write(p []byte) (int, error) {
	w.log.Append(w.session, p)
	return len(p), nil
}

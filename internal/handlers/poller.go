package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jmespath/go-jmespath"
	"go.uber.org/zap"

	"skillflow/internal/executor"
	"skillflow/internal/workflow"
)

// ConditionResult is the output of a satisfied wait step.
type ConditionResult struct {
	Condition workflow.Condition `json:"condition" yaml:"condition"`
	Checks    int                `json:"checks" yaml:"checks"`
}

func (r ConditionResult) String() string {
	return fmt.Sprintf("%s satisfied after %d check(s)", r.Condition, r.Checks)
}

// Poller handles wait steps by re-checking their condition every interval
// until it holds or ctx is done.
//
// Conditions:
//   - log_contains: the terminal session log contains the target text
//   - file_exists: a file exists at the target path
//   - api_status: GET on the target returns 2xx. A target of the form
//     "URL#expression" additionally requires the JMESPath expression to be
//     truthy against the JSON response body.
//
// The time condition is handled by the executor and never reaches a Poller.
type Poller struct {
	sessions *SessionLog
	session  string
	http     *HTTPClient
	interval time.Duration
	logger   *zap.SugaredLogger

	mu    sync.RWMutex
	exprs map[string]*jmespath.JMESPath
}

// NewPoller creates a poller reading log output from the named session.
func NewPoller(sessions *SessionLog, session string, client *HTTPClient, interval time.Duration, logger *zap.SugaredLogger) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{
		sessions: sessions,
		session:  session,
		http:     client,
		interval: interval,
		logger:   nopIfNil(logger),
		exprs:    make(map[string]*jmespath.JMESPath),
	}
}

// Handle polls until the step's condition holds. When ctx ends first it
// returns an error wrapping [executor.ErrConditionNotMet].
func (p *Poller) Handle(ctx context.Context, step workflow.Step) (any, error) {
	wait, ok := step.Action.(workflow.Wait)
	if !ok {
		return nil, unexpectedAction(step)
	}
	if wait.Condition == workflow.ConditionTime {
		return nil, errors.New("time conditions are timed by the executor")
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	checks := 0
	for {
		checks++
		ok, err := p.Check(ctx, wait.Condition, wait.Target)
		if err != nil {
			return nil, err
		}
		if ok {
			return ConditionResult{Condition: wait.Condition, Checks: checks}, nil
		}
		p.logger.Debugw("condition not met yet", "condition", string(wait.Condition), "target", wait.Target, "checks", checks)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s %q after %d check(s)", executor.ErrConditionNotMet, wait.Condition, wait.Target, checks)
		case <-ticker.C:
		}
	}
}

// Check evaluates a condition once. An error means the condition can never
// hold, such as an invalid JMESPath expression.
func (p *Poller) Check(ctx context.Context, cond workflow.Condition, target string) (bool, error) {
	switch cond {
	case workflow.ConditionLogContains:
		if p.sessions == nil {
			return false, nil
		}
		return p.sessions.Contains(p.session, target), nil
	case workflow.ConditionFileExists:
		_, err := os.Stat(target)
		return err == nil, nil
	case workflow.ConditionAPIStatus:
		return p.checkAPI(ctx, target)
	}
	return false, fmt.Errorf("unsupported wait condition %q", cond)
}

func (p *Poller) checkAPI(ctx context.Context, target string) (bool, error) {
	rawURL, expr, hasExpr := strings.Cut(target, "#")

	var compiled *jmespath.JMESPath
	if hasExpr && expr != "" {
		var err error
		if compiled, err = p.compile(expr); err != nil {
			return false, fmt.Errorf("invalid expression %q: %w", expr, err)
		}
	}

	resp, err := p.http.Do(ctx, "GET", rawURL, "")
	if err != nil || !resp.OK() {
		return false, nil
	}
	if compiled == nil {
		return true, nil
	}

	var data any
	if err := json.Unmarshal([]byte(resp.Body), &data); err != nil {
		return false, nil
	}
	result, err := compiled.Search(data)
	if err != nil {
		return false, nil
	}
	return truthy(result), nil
}

func (p *Poller) compile(expr string) (*jmespath.JMESPath, error) {
	p.mu.RLock()
	compiled, ok := p.exprs[expr]
	p.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.exprs[expr] = compiled
	p.mu.Unlock()
	return compiled, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

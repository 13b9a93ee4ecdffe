// Package sentry wires crash and error reporting for the CLI. Reporting is
// opt-in: it activates only when a DSN is available (build-time or via
// SENTRY_DSN), and every outgoing event is scrubbed of local paths, emails,
// and tokens before it leaves the process.
package sentry

import (
	"context"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	flushTimeout      = 2 * time.Second
	httpClientTimeout = 10 * time.Second
	maxBreadcrumbs    = 20
)

var (
	homePathPattern = regexp.MustCompile(`(?i)(/home/|/Users/|C:\\Users\\)([^/\\:]+)`)
	apiKeyPattern   = regexp.MustCompile(`(?i)(sk-ant-api\d+-|sk-|api[_-]?key[=:]\s*)([A-Za-z0-9_-]{10,})`)
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// DSN is injected at build time via ldflags for release builds:
// go build -ldflags "-X github.com/isobin/isobin/internal/sentry.DSN=https://..."
// Empty by default, which disables reporting entirely.
var DSN string

// Init initializes the Sentry SDK for the given CLI version. Respects the
// DO_NOT_TRACK convention (https://consoledonottrack.com/) and ISOBIN_NO_TELEMETRY.
// Returns a cleanup function that should be deferred.
func Init(version string) func() {
	if os.Getenv("DO_NOT_TRACK") == "1" || os.Getenv("ISOBIN_NO_TELEMETRY") == "1" {
		return func() {}
	}

	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		dsn = DSN
	}
	if dsn == "" {
		return func() {}
	}

	env := os.Getenv("SENTRY_ENVIRONMENT")
	if env == "" {
		env = "production"
	}

	serverName := runtime.GOOS + "-" + runtime.GOARCH

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          "isobin@" + version,
		Environment:      env,
		ServerName:       serverName,
		AttachStacktrace: true,
		SampleRate:       1.0,
		Debug:            env == "development",
		MaxBreadcrumbs:   maxBreadcrumbs,
		HTTPClient: &http.Client{
			Timeout: httpClientTimeout,
		},
		IgnoreErrors: []string{
			"context canceled",
			"context deadline exceeded",
			"signal: interrupt",
			"signal: terminated",
			"EOF",
			"broken pipe",
			"connection reset",
		},
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if hint != nil && hint.OriginalException != nil {
				msg := hint.OriginalException.Error()
				if strings.Contains(msg, "interrupt") ||
					strings.Contains(msg, "context canceled") ||
					strings.Contains(msg, "terminated") {
					return nil
				}
			}
			if event.Message != "" {
				msg := strings.ToLower(event.Message)
				if strings.Contains(msg, "interrupt") ||
					strings.Contains(msg, "context canceled") ||
					strings.Contains(msg, "cancelled") {
					return nil
				}
			}
			scrubEvent(event)
			return event
		},
		BeforeBreadcrumb: func(breadcrumb *sentry.Breadcrumb, hint *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			breadcrumb.Message = scrubPII(breadcrumb.Message)
			return breadcrumb
		},
	})
	if err != nil {
		return func() {}
	}

	return func() {
		sentry.Flush(flushTimeout)
	}
}

// CaptureError reports an error to Sentry if initialized.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// CaptureMessage reports a message to Sentry if initialized.
func CaptureMessage(msg string) {
	sentry.CaptureMessage(msg)
}

// RecoverAndPanic recovers from a panic, reports it, then re-panics so the
// CLI's own top-level handler still prints it. Defer this before Init's
// cleanup so Flush happens before the re-panic unwinds further.
func RecoverAndPanic() {
	if r := recover(); r != nil {
		sentry.CurrentHub().RecoverWithContext(context.Background(), r)
		sentry.Flush(flushTimeout)
		panic(r)
	}
}

// AddBreadcrumb adds context for debugging.
func AddBreadcrumb(category, message string) {
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	})
}

// SetTag sets a tag for filtering errors. Values are scrubbed of PII first.
func SetTag(key, value string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag(key, scrubPII(value))
	})
}

// scrubPII removes usernames in paths, API keys, and email addresses from s.
func scrubPII(s string) string {
	s = homePathPattern.ReplaceAllString(s, "${1}[user]")
	s = apiKeyPattern.ReplaceAllString(s, "${1}[REDACTED]")
	s = emailPattern.ReplaceAllString(s, "[email]")
	return s
}

func scrubEvent(event *sentry.Event) {
	event.Message = scrubPII(event.Message)

	for i := range event.Exception {
		event.Exception[i].Value = scrubPII(event.Exception[i].Value)
		if event.Exception[i].Stacktrace != nil {
			for j := range event.Exception[i].Stacktrace.Frames {
				frame := &event.Exception[i].Stacktrace.Frames[j]
				frame.AbsPath = scrubPII(frame.AbsPath)
				frame.Filename = scrubPII(frame.Filename)
			}
		}
	}

	for i := range event.Breadcrumbs {
		event.Breadcrumbs[i].Message = scrubPII(event.Breadcrumbs[i].Message)
	}

	for key, value := range event.Extra {
		if str, ok := value.(string); ok {
			event.Extra[key] = scrubPII(str)
		}
	}

	for key, value := range event.Tags {
		event.Tags[key] = scrubPII(value)
	}
}

package httpapi

import (
	"bytes"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// loggingLineWriter echoes a response body to the log one line at a time.
// A trailing partial line is held until the next newline arrives.
type loggingLineWriter struct {
	requestID string
	pending   []byte
}

func (lw *loggingLineWriter) Write(p []byte) (int, error) {
	lw.pending = append(lw.pending, p...)
	for {
		i := bytes.IndexByte(lw.pending, '\n')
		if i < 0 {
			return len(p), nil
		}
		if i > 0 {
			lw.emit(string(lw.pending[:i]))
		}
		lw.pending = lw.pending[i+1:]
	}
}

func (lw *loggingLineWriter) emit(line string) {
	if zlog == nil {
		log.Printf("solve> %s", line)
		return
	}
	ev := zlog.Debug().Str("body", line)
	if lw.requestID != "" {
		ev = ev.Str("request_id", lw.requestID)
	}
	ev.Msg("solve response")
}

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("MCPSOLVE_HTTP_LOG_LEVEL"))

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logSolveEnd records the end of a /solve request at info level.
func logSolveEnd(r *http.Request, lvl LogLevel, status int, fields func(*zerolog.Event), err error) {
	if lvl < LevelInfo {
		return
	}
	rid := requestID(r)
	if zlog == nil {
		log.Printf("solve end status=%d request_id=%s err=%v", status, rid, err)
		return
	}
	z := zlog.Info().Int("status", status)
	if rid != "" {
		z = z.Str("request_id", rid)
	}
	if fields != nil {
		fields(z)
	}
	if err != nil {
		z = z.Err(err)
	}
	z.Msg("solve end")
}

package httpapi

import (
	"bytes"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"":        LevelOff,
		"off":     LevelOff,
		"ERROR":   LevelError,
		" info ":  LevelInfo,
		"Debug":   LevelDebug,
		"verbose": LevelInfo,
	} {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		header string
		want   LogLevel
	}{
		{name: "query level", url: "/solve?log=debug", want: LevelDebug},
		{name: "query shorthand", url: "/solve?log=1", want: LevelDebug},
		{name: "header", url: "/solve", header: "error", want: LevelError},
		{name: "query beats header", url: "/solve?log=off", header: "debug", want: LevelOff},
		{name: "default", url: "/solve", want: defaultLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", tt.url, nil)
			if tt.header != "" {
				r.Header.Set("X-Log-Level", tt.header)
			}
			if got := requestLogLevel(r); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoggingLineWriter_StdlibFallback(t *testing.T) {
	prev := zlog
	zlog = nil
	defer func() { zlog = prev }()
	var buf bytes.Buffer
	orig := log.Writer()
	defer log.SetOutput(orig)
	log.SetOutput(&buf)

	lw := &loggingLineWriter{}
	_, _ = lw.Write([]byte(`{"obj":8,`))
	_, _ = lw.Write([]byte("\"optimal\":true}\n\n{\"next\""))

	out := buf.String()
	if !strings.Contains(out, `solve> {"obj":8,"optimal":true}`) {
		t.Fatalf("joined line missing: %q", out)
	}
	if strings.Count(out, "solve>") != 1 {
		t.Fatalf("blank or partial lines must not be logged: %q", out)
	}
	if string(lw.pending) != `{"next"` {
		t.Fatalf("pending = %q", lw.pending)
	}
}

func TestLoggingLineWriter_Zerolog(t *testing.T) {
	prev := zlog
	defer func() { zlog = prev }()
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	lw := &loggingLineWriter{requestID: "req-7"}
	_, _ = lw.Write([]byte("{\"obj\":3}\n"))

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-7"`) || !strings.Contains(out, `"message":"solve response"`) {
		t.Fatalf("unexpected log output: %q", out)
	}
}

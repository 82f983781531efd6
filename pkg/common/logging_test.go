package common

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestSetLoggerAndGetLogger(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	SetLogger(l)
	if GetLogger() != l {
		t.Fatal("GetLogger did not return the logger set via SetLogger")
	}

	SetLogger(nil)
	if GetLogger() == nil {
		t.Fatal("GetLogger should never be nil")
	}
}

func TestLoggerWithContext(t *testing.T) {
	base := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := WithLogger(context.Background(), base)
	if got := LoggerFromContext(ctx); got != base {
		t.Fatal("LoggerFromContext did not return the stored logger")
	}
	if LoggerFromContext(context.Background()) == nil {
		t.Fatal("LoggerFromContext should fall back to the default logger")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[LogLevel]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("ParseLogLevel(%q)=%v want %v", in, got, want)
		}
	}
}

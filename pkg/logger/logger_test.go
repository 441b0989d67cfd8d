package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitAndLevelString(t *testing.T) {
	cases := map[string]string{
		"debug":    "debug",
		"WARN":     "warn",
		"warning":  "warn",
		"Error":    "error",
		" fatal ":  "fatal",
		"nonsense": "info",
		"":         "info",
	}
	for in, want := range cases {
		Init(in)
		if got := LevelString(); got != want {
			t.Fatalf("Init(%q): LevelString() = %q, want %q", in, got, want)
		}
	}
	Init("info")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	Init("warn")
	defer Init("info")
	Debugf("debug-msg")
	Infof("info-msg")
	Warnf("warn-msg %d", 1)
	Error("error-msg")

	out := buf.String()
	if strings.Contains(out, "debug-msg") || strings.Contains(out, "info-msg") {
		t.Fatalf("messages below warn should be suppressed: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn-msg 1") {
		t.Fatalf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error-msg") {
		t.Fatalf("error message missing: %q", out)
	}
}

func TestFatalfExits(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	code := -1
	orig := exit
	exit = func(c int) { code = c }
	defer func() { exit = orig }()

	Init("fatal")
	defer Init("info")
	Fatalf("boom")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(buf.String(), "[FATAL] boom") {
		t.Fatalf("fatal line missing: %q", buf.String())
	}
}

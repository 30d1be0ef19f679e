package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khushveer007/courseget/internal/logger"
)

func TestInitLogging_DebugWritesLeveledLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "courseget.log")

	if err := logger.InitLogging(true, logPath); err != nil {
		t.Fatalf("InitLogging failed: %v", err)
	}

	logger.Infof("downloaded %s", "slides.pdf")
	logger.Warnf("slow response from %s", "host")
	logger.Errorf("giving up on %s", "lecture.mp4")
	logger.Debugf("request headers set")

	logger.Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)

	for _, want := range []string{
		"courseget ",
		"[INFO] downloaded slides.pdf",
		"[WARNING] slow response from host",
		"[ERROR] giving up on lecture.mp4",
		"[DEBUG] request headers set",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log file missing %q\ngot:\n%s", want, content)
		}
	}
}

func TestInitLogging_DebugOffCreatesNoFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "courseget.log")

	if err := logger.InitLogging(false, logPath); err != nil {
		t.Fatalf("InitLogging failed: %v", err)
	}

	defer logger.Close()

	logger.Infof("should go nowhere")

	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Errorf("no log file should exist with debug off, stat err = %v", err)
	}
}

func TestInitLogging_BadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := logger.InitLogging(true, filepath.Join(blocker, "nested", "courseget.log"))
	if err == nil {
		t.Fatal("expected error for unwritable log path")
	}
}

package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/swappiehq/kvprobe/logging"
)

func TestLogger(t *testing.T) {
	log := logging.New()

	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	for _, tt := range []struct {
		name string
		log  func()
		want string
	}{{
		name: "error",
		log:  func() { log.Error("error") },
		want: `level=error msg=error`,
	}, {
		name: "errorf",
		log:  func() { log.Errorf("errorf: %s", "foo") },
		want: `level=error msg="errorf: foo"`,
	}, {
		name: "warn",
		log:  func() { log.Warn("warn") },
		want: `level=warning msg=warn`,
	}, {
		name: "warnf",
		log:  func() { log.Warnf("warnf: %s", "foo") },
		want: `level=warning msg="warnf: foo"`,
	}, {
		name: "info",
		log:  func() { log.Info("info") },
		want: `level=info msg=info`,
	}, {
		name: "infof",
		log:  func() { log.Infof("infof: %s", "foo") },
		want: `level=info msg="infof: foo"`,
	}, {
		name: "debug",
		log:  func() { log.Debug("debug") },
		want: `level=debug msg=debug`,
	}, {
		name: "debugf",
		log:  func() { log.Debugf("debugf: %s", "foo") },
		want: `level=debug msg="debugf: foo"`,
	}} {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()
			if got := strings.TrimSpace(buf.String()); got != tt.want {
				t.Fatalf("Failed to log: want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoggerWithFields(t *testing.T) {
	log := logging.New()

	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	withAddr := log.WithFields(map[string]interface{}{"address": "127.0.0.1:6379"})
	withAddr.Info("ready")
	if got := buf.String(); !strings.Contains(got, "address=") || !strings.Contains(got, "127.0.0.1:6379") {
		t.Fatalf("Failed to log fields, got %q", got)
	}

	buf.Reset()
	log.Info("plain")
	if got := buf.String(); strings.Contains(got, "address=") {
		t.Fatalf("WithFields modified the parent logger, got %q", got)
	}
}

func TestLoggerLevel(t *testing.T) {
	log := logging.New()

	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetLevel(logrus.WarnLevel)

	log.Info("hidden")
	log.Debugf("hidden %d", 2)
	if buf.Len() != 0 {
		t.Fatalf("Failed to filter by level, got %q", buf.String())
	}
}

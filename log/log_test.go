package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/onsi/gomega"
	log "github.com/sirupsen/logrus"
)

// Helper function to capture log output
func captureOutput(fn func()) string {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	fn()
	log.SetOutput(nil)
	return buf.String()
}

func TestInfo(t *testing.T) {
	g := gomega.NewWithT(t)
	log.SetLevel(log.InfoLevel)
	output := captureOutput(func() {
		Info("switching to %s", "tenant1")
	})
	g.Expect(output).To(gomega.ContainSubstring("switching to tenant1"))
	g.Expect(output).To(gomega.ContainSubstring("level=info"))
}

func TestDebug_FilteredAtInfoLevel(t *testing.T) {
	g := gomega.NewWithT(t)
	log.SetLevel(log.InfoLevel)
	output := captureOutput(func() {
		Debug("should not appear")
	})
	g.Expect(output).NotTo(gomega.ContainSubstring("should not appear"))
}

func TestWarn(t *testing.T) {
	g := gomega.NewWithT(t)
	log.SetLevel(log.WarnLevel)
	output := captureOutput(func() {
		Warn("tenant %s skipped", "beta")
	})
	g.Expect(output).To(gomega.ContainSubstring("tenant beta skipped"))
	g.Expect(output).To(gomega.ContainSubstring("level=warning"))
}

func TestError(t *testing.T) {
	g := gomega.NewWithT(t)
	log.SetLevel(log.ErrorLevel)
	output := captureOutput(func() {
		Error("drop failed: %v", "boom")
	})
	g.Expect(output).To(gomega.ContainSubstring("drop failed: boom"))
	g.Expect(output).To(gomega.ContainSubstring("level=error"))
}

func TestTenant_AddsField(t *testing.T) {
	g := gomega.NewWithT(t)
	log.SetLevel(log.InfoLevel)
	output := captureOutput(func() {
		Tenant("acme").Info("migrated")
	})
	g.Expect(output).To(gomega.ContainSubstring("tenant=acme"))
	g.Expect(output).To(gomega.ContainSubstring("migrated"))
}

func TestConcurrentLogging(t *testing.T) {
	g := gomega.NewWithT(t)
	log.SetLevel(log.InfoLevel)
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			Info("concurrent log %d", id)
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	g.Expect(strings.Contains(buf.String(), "concurrent log")).To(gomega.BeTrue())
}

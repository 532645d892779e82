package log

import (
	log "github.com/sirupsen/logrus"
)

func Debug(format string, args ...any) {
	log.Debugf(format, args...)
}

func Info(format string, args ...any) {
	log.Infof(format, args...)
}

func Warn(format string, args ...any) {
	log.Warnf(format, args...)
}

func Error(format string, args ...any) {
	log.Errorf(format, args...)
}

func Fatal(format string, args ...any) {
	log.Fatalf(format, args...)
}

// Tenant returns an entry carrying the tenant field so every line produced
// by a per-tenant operation can be traced back to its tenant.
func Tenant(tenant string) *log.Entry {
	return log.WithField("tenant", tenant)
}

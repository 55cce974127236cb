// Package logx provides structured key=value logging on top of the standard
// logger. Failures in the sync/cache layers are logged here and never
// propagated to callers.
package logx

import "log"

type Logger struct {
	component string
}

func New(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) Infof(operation, format string, args ...interface{}) {
	log.Printf("[info] component=%s operation=%s "+format,
		append([]interface{}{l.component, operation}, args...)...)
}

func (l *Logger) Warnf(operation, format string, args ...interface{}) {
	log.Printf("[warn] component=%s operation=%s "+format,
		append([]interface{}{l.component, operation}, args...)...)
}

func (l *Logger) Error(operation string, err error) {
	log.Printf("[error] component=%s operation=%s error=%v", l.component, operation, err)
}

func (l *Logger) Errorf(operation, format string, args ...interface{}) {
	log.Printf("[error] component=%s operation=%s "+format,
		append([]interface{}{l.component, operation}, args...)...)
}

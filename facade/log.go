package facade

import (
	"fmt"

	"github.com/wippyai/script-bridge/calltable"
)

// Log writes to the engine log. It holds no state.
type Log struct {
	calls *calltable.Table
}

func NewLog(calls *calltable.Table) Log {
	return Log{calls: calls}
}

func (l Log) Info(msg string) error    { return l.calls.LogInfo(msg) }
func (l Log) Warning(msg string) error { return l.calls.LogWarning(msg) }
func (l Log) Error(msg string) error   { return l.calls.LogError(msg) }

func (l Log) Infof(format string, args ...any) error {
	return l.calls.LogInfo(fmt.Sprintf(format, args...))
}

func (l Log) Warningf(format string, args ...any) error {
	return l.calls.LogWarning(fmt.Sprintf(format, args...))
}

func (l Log) Errorf(format string, args ...any) error {
	return l.calls.LogError(fmt.Sprintf(format, args...))
}

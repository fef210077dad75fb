package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"time"
)

const (
	levelInfo  = "INFO"
	levelError = "ERROR"
)

// StdoutLogger emits one JSON object per line, tagged with the service name.
// Out defaults to stdout; tests point it at a buffer.
type StdoutLogger struct {
	Out io.Writer
}

func (l *StdoutLogger) log(level, msg string, fields map[string]any) {
	entry := map[string]any{
		"level":   level,
		"msg":     msg,
		"service": "payflow",
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	maps.Copy(entry, fields)

	out := l.Out
	if out == nil {
		out = os.Stdout
	}

	b, _ := json.Marshal(entry)
	fmt.Fprintln(out, string(b))
}

func (l *StdoutLogger) Info(msg string, fields map[string]any) {
	l.log(levelInfo, msg, fields)
}

func (l *StdoutLogger) Error(msg string, fields map[string]any) {
	l.log(levelError, msg, fields)
}

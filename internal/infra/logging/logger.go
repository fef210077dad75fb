package logging

type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// Nop discards everything; used by tests and as a nil-safe default.
type Nop struct{}

func (Nop) Info(string, map[string]any)  {}
func (Nop) Error(string, map[string]any) {}

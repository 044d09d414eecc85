package core

// Logger is any service that can report application events.
// expected args: error | map[string]interface{} | Identity
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Identity is the authenticated staff member attached to log entries.
type Identity struct {
	Email string
}

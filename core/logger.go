package core

// Logger is the minimal logging contract used across the app.
// expected args: error, map[string]interface{}, session user
type Logger interface {
	Enable(enabled bool)
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

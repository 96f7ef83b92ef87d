package core

// Logger is the application logger.
// args may carry errors, extra data (map[string]interface{}) and the authenticated principal.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Principal identifies the authenticated account in logs.
type Principal struct {
	CPF   string
	Nome  string
	Email string
}

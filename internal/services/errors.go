package services

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

// ConfigurationError reports a server setup problem, such as a missing API
// credential. It is raised before any call to the AI backend.
type ConfigurationError struct{ Message string }

func (e *ConfigurationError) Error() string { return e.Message }

// UnavailableError reports an optional feature that cannot run right now.
type UnavailableError struct{ Message string }

func (e *UnavailableError) Error() string { return e.Message }

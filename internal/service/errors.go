package service

// Error codes carried by ServiceError. The API layer maps them to HTTP
// status codes.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL"
)

// ServiceError is a typed error with a stable code and a client-safe message.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Code + ": " + e.Message
}

func invalidArgument(message string) *ServiceError {
	return &ServiceError{Code: CodeInvalidArgument, Message: message}
}

func notFound(message string) *ServiceError {
	return &ServiceError{Code: CodeNotFound, Message: message}
}

func internal(message string) *ServiceError {
	return &ServiceError{Code: CodeInternal, Message: message}
}

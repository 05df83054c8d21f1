package service

// ServiceError carries an HTTP-shaped status code through the service layer
// so a rejection raised by a socket daemon or a failed lookup reaches the
// API with its original code instead of a blanket 500.
type ServiceError struct {
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewServiceError(code int, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

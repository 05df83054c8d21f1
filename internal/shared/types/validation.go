package types

// ValidationResult is what a command validator hands back to the socket
// processor; Code maps directly onto the socket response code.
type ValidationResult struct {
	Code    int
	Message string
}

const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusConflict            = 409
	StatusPreconditionFailed  = 412
	StatusInternalServerError = 500
	StatusServiceUnavailable  = 503
)

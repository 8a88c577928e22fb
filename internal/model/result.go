package model

// Result is the uniform outcome of a domain action: either Error is set,
// or Data holds the decoded payload. Status is the backend HTTP status,
// or zero when no response was received.
type Result[T any] struct {
	Error  string
	Data   *T
	Status int
}

// Failed reports whether the action produced an error.
func (r Result[T]) Failed() bool {
	return r.Error != ""
}

// OK builds a successful result.
func OK[T any](data *T, status int) Result[T] {
	return Result[T]{Data: data, Status: status}
}

// Fail builds a failed result. An empty message falls back to the generic one.
func Fail[T any](message string, status int) Result[T] {
	if message == "" {
		message = GenericErrorMessage
	}
	return Result[T]{Error: message, Status: status}
}

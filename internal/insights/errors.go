package insights

import "errors"

// ValidationError reports a malformed request: missing owner, unparseable
// dates, or an inverted window. Callers map it to a 400-class response.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// FetchError wraps a store failure. Callers map it to a 500-class response;
// the aggregator never retries.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "fetch expenses: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsFetch reports whether err is a store fetch failure.
func IsFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

package wire

// DecodeError reports a document that could not be interpreted as an
// envelope: malformed XML syntax, a wrong root element, or a missing or
// unrecognized discriminator during strict decoding.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return "wire: " + e.Reason + ": " + e.Err.Error()
	}
	return "wire: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

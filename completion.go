package streamkit

// Completion is the terminal signal of a stream: either normal completion or
// a failure carrying exactly one error. There is no per-value error path; a
// failed upstream terminates the whole stream. The zero value is normal
// completion.
type Completion struct {
	err error
}

// Finished returns the normal-termination signal.
func Finished() Completion { return Completion{} }

// Failed returns a failure signal carrying err. A nil err is equivalent to
// Finished.
func Failed(err error) Completion { return Completion{err: err} }

// Err returns the failure cause, nil for normal completion.
func (c Completion) Err() error { return c.err }

// IsFailure reports whether the stream terminated with an error.
func (c Completion) IsFailure() bool { return c.err != nil }

// String implements fmt.Stringer.
func (c Completion) String() string {
	if c.err != nil {
		return "failed: " + c.err.Error()
	}
	return "finished"
}

package gridfeat

// Error is the interface for errors that all packages in this library
// implement. The Decorate method allows to add and retrieve info from the
// error, without changing its type or wrapping it in something else.
// The decoration slice should contain the names of the functions in the
// calling stack plus, for each, any relevant extra info in the format
// "FunctionName: Extra info". If passed an empty string, Decorate just
// returns the current value without adding anything.
type Error interface {
	Error() string
	Critical() bool
	Decorate(string) []string
}

// CError is the concrete error type of the root package.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

// Critical returns whether the error is critical or can be ignored.
// Every CError is critical: the error taxonomy of this library has no
// recoverable conditions in the root package.
func (err CError) Critical() bool { return true }

// Decorate adds the dec string to the decoration slice of the error and
// returns the resulting slice.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// errDecorate asserts that err implements Error and decorates it with the
// caller's name before returning it. Calling it with any other error type
// is a programming error, and panics.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}

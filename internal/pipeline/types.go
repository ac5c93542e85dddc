package pipeline

// RootStatus represents the current progress of a single documentation
// root.
type RootStatus struct {
	Root         string
	Stage        string // "waiting", "processing", "done", "error"
	Total        int
	Done         int
	Skipped      int
	Errors       int
	FailuresPath string
}

// ParseError wraps a library parse failure so callers can distinguish it
// from other pipeline errors (e.g. to treat it as non-fatal).
type ParseError struct{ Err error }

func (e *ParseError) Error() string { return e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

package gogen

// errorsContainerSrc is spliced into every generated package: the
// parse-error container threaded through every emit_parse call (§4.6.1,
// §7). It bounds the number of errors a single parse collects and lets
// the preallocation/parse phases break out early once full.
//
// Ported from mapry/go/generate/parse.py's _DEFINE_ERROR_AND_ERRORS.
const errorsContainerSrc = `
// Error represents a parsing error on a specific reference path into the
// source JSONable value.
type Error struct {
	// Ref is a reference path (e.g. "#/some_nodes/some_id/some_property")
	// to the offending part of the source value.
	Ref string

	// Message describes what went wrong.
	Message string
}

func (e *Error) Error() string {
	return e.Ref + ": " + e.Message
}

// Errors collects parsing errors up to a fixed cap; once full, further
// errors are silently dropped so that a parse of pathological input
// terminates in bounded memory.
type Errors struct {
	cap    int
	errs   []*Error
}

// NewErrors creates an Errors container that holds at most cap errors.
func NewErrors(cap int) *Errors {
	return &Errors{cap: cap}
}

// Values returns every error collected so far.
func (e *Errors) Values() []*Error {
	return e.errs
}

// Add appends an error at ref, unless the container is already full.
func (e *Errors) Add(ref string, message string) {
	if e.Full() {
		return
	}

	e.errs = append(e.errs, &Error{Ref: ref, Message: message})
}

// Full reports whether the container has reached its cap.
func (e *Errors) Full() bool {
	return len(e.errs) >= e.cap
}

// Empty reports whether no errors have been collected.
func (e *Errors) Empty() bool {
	return len(e.errs) == 0
}
`

package brief

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBriefFound indicates that no comment in the scanned prefix carries the tag.
	ErrNoBriefFound = errors.New("no brief found")

	// ErrUnreadableFile indicates the file could not be opened or decoded as text.
	ErrUnreadableFile = errors.New("unreadable file")
)

// FailureKind classifies why extraction produced no brief.
type FailureKind int

const (
	// NoBriefFound is a soft failure: the file is fine but carries no tagged comment.
	NoBriefFound FailureKind = iota
	// UnreadableFile is a hard failure: the file could not be read as text.
	UnreadableFile
)

func (k FailureKind) String() string {
	switch k {
	case NoBriefFound:
		return "no-brief"
	case UnreadableFile:
		return "unreadable"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Failure is the error returned for a file that yields no brief.
type Failure struct {
	Kind FailureKind
	Path string
	// Err is the underlying I/O or decoding error, if any.
	Err error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Path, f.sentinel(), f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Path, f.sentinel())
}

// Is matches the sentinel for the failure kind so callers can use errors.Is.
func (f *Failure) Is(target error) bool {
	return target == f.sentinel()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func (f *Failure) sentinel() error {
	if f.Kind == UnreadableFile {
		return ErrUnreadableFile
	}
	return ErrNoBriefFound
}

// AsFailure returns the *Failure in err's chain, if any.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

package ftp

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// ErrorKind classifies an *Error.
type ErrorKind int

const (
	// KindIO is a transport failure: refused or timed out connects, resets,
	// a stream that ends early or an empty reply line.
	KindIO ErrorKind = iota

	// KindProtocol means the transport worked but the server said something
	// unexpected: a wrong reply code, a malformed PASV tuple or broken
	// multi-line framing.
	KindProtocol

	// KindIllegalState is API misuse, such as sending a command on a channel
	// that was never connected or has been closed.
	KindIllegalState
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindProtocol:
		return "protocol"
	case KindIllegalState:
		return "illegal state"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the error type returned by every operation in this package.
// Use errors.As to get at the details:
//
//	var fe *ftp.Error
//	if errors.As(err, &fe) && fe.Kind == ftp.KindProtocol {
//	    fmt.Println(fe.Code, fe.Text)
//	}
type Error struct {
	// Kind tells transport failures, protocol violations and misuse apart.
	Kind ErrorKind

	// Op is the command or operation that failed (e.g. "PASV", "connect").
	// Commands carrying a password are recorded in redacted form.
	Op string

	// Code is the numeric reply code, or 0 when no reply was involved.
	Code int

	// Text is the reply text sent by the server, or a short description.
	Text string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("ftp: %s failed: %s (code %d)", e.Op, e.Text, e.Code)
	}
	msg := "ftp: " + e.Op
	if e.Text != "" {
		msg += ": " + e.Text
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the error was caused by an expired deadline.
func (e *Error) Timeout() bool {
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// Is4xx returns true if the error carries a 4xx reply code (transient failure).
func (e *Error) Is4xx() bool {
	return e.Code >= 400 && e.Code < 500
}

// Is5xx returns true if the error carries a 5xx reply code (permanent failure).
func (e *Error) Is5xx() bool {
	return e.Code >= 500 && e.Code < 600
}

// IsTemporary returns true if the server reported a transient failure (4xx).
// Retry policy is left to the caller.
func (e *Error) IsTemporary() bool {
	return e.Is4xx()
}

// IsPermanent returns true if the server reported a permanent failure (5xx).
func (e *Error) IsPermanent() bool {
	return e.Is5xx()
}

// IsIOError reports whether err is a transport failure.
func IsIOError(err error) bool {
	return hasKind(err, KindIO)
}

// IsProtocolError reports whether err is a protocol violation.
func IsProtocolError(err error) bool {
	return hasKind(err, KindProtocol)
}

// IsIllegalState reports whether err is the result of API misuse.
func IsIllegalState(err error) bool {
	return hasKind(err, KindIllegalState)
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func ioError(op, text string, cause error) *Error {
	return &Error{Kind: KindIO, Op: op, Text: text, Err: errors.WithStack(cause)}
}

func protocolError(op, text string) *Error {
	return &Error{Kind: KindProtocol, Op: op, Text: text}
}

func replyError(op string, r Reply) *Error {
	return &Error{Kind: KindProtocol, Op: op, Code: r.Number(), Text: r.Text}
}

func illegalState(op, text string) *Error {
	return &Error{Kind: KindIllegalState, Op: op, Text: text}
}

// withOp rewrites the operation of an *Error produced deeper in the stack
// so that it names the command the caller issued.
func withOp(err error, op string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Op = op
	}
	return err
}

package ftp

import (
	"context"
	"errors"
	"testing"
)

func TestError_Message(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "reply",
			err:  &Error{Kind: KindProtocol, Op: "STOR file.txt", Text: "Permission denied", Code: 550},
			want: "ftp: STOR file.txt failed: Permission denied (code 550)",
		},
		{
			name: "cause",
			err:  &Error{Kind: KindIO, Op: "connect", Text: "failed to connect", Err: context.DeadlineExceeded},
			want: "ftp: connect: failed to connect: context deadline exceeded",
		},
		{
			name: "text only",
			err:  &Error{Kind: KindIllegalState, Op: "close", Text: "channel is closed"},
			want: "ftp: close: channel is closed",
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("%s: Error() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestError_CodeClasses(t *testing.T) {
	t.Parallel()
	err := &Error{Kind: KindProtocol, Op: "STOR file.txt", Code: 550}

	if !err.Is5xx() || !err.IsPermanent() {
		t.Error("code 550 should be permanent")
	}
	if err.Is4xx() || err.IsTemporary() {
		t.Error("code 550 should not be temporary")
	}

	err.Code = 421
	if !err.IsTemporary() || err.IsPermanent() {
		t.Error("code 421 should be temporary")
	}
}

func TestError_KindPredicates(t *testing.T) {
	t.Parallel()
	io := ioError("connect", "failed", context.Canceled)
	proto := protocolError("PASV", "malformed PASV reply")
	state := illegalState("close", "channel is closed")

	if !IsIOError(io) || IsProtocolError(io) || IsIllegalState(io) {
		t.Errorf("io error misclassified: %v", io)
	}
	if !IsProtocolError(proto) || IsIOError(proto) {
		t.Errorf("protocol error misclassified: %v", proto)
	}
	if !IsIllegalState(state) || IsIOError(state) {
		t.Errorf("illegal state misclassified: %v", state)
	}
	if IsIOError(errors.New("plain")) || IsIOError(nil) {
		t.Error("foreign errors have no kind")
	}
	if !errors.Is(io, context.Canceled) {
		t.Error("cause should be reachable with errors.Is")
	}
	if io.Timeout() {
		t.Error("cancellation is not a timeout")
	}
}

func TestErrorKind_String(t *testing.T) {
	t.Parallel()
	if KindIO.String() != "io" || KindProtocol.String() != "protocol" || KindIllegalState.String() != "illegal state" {
		t.Error("unexpected kind names")
	}
	if got := ErrorKind(9).String(); got != "ErrorKind(9)" {
		t.Errorf("ErrorKind(9).String() = %q", got)
	}
}

func TestReply_CodeChecks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		code  string
		is1xx bool
		is2xx bool
		is3xx bool
		is4xx bool
		is5xx bool
	}{
		{"150", true, false, false, false, false},
		{"200", false, true, false, false, false},
		{"220", false, true, false, false, false},
		{"331", false, false, true, false, false},
		{"421", false, false, false, true, false},
		{"550", false, false, false, false, true},
	}

	for _, tt := range tests {
		r := Reply{Code: tt.code}
		if r.Is1xx() != tt.is1xx || r.Is2xx() != tt.is2xx || r.Is3xx() != tt.is3xx ||
			r.Is4xx() != tt.is4xx || r.Is5xx() != tt.is5xx {
			t.Errorf("Reply{%s} code classes wrong", tt.code)
		}
	}

	if got := (Reply{Code: "227", Text: "Entering Passive Mode"}).String(); got != "227 Entering Passive Mode" {
		t.Errorf("String() = %q", got)
	}
	if got := (Reply{Code: "xyz"}).Number(); got != 0 {
		t.Errorf("Number() = %d, want 0", got)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()
	for s, want := range map[State]string{Unconnected: "unconnected", Connected: "connected", Closed: "closed", State(5): "State(5)"} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

package ftp

import "strconv"

// Reply codes used by the control channel (RFC 959).
const (
	CodeFileStatusOK       = "150"
	CodeCommandOK          = "200"
	CodeServiceReady       = "220"
	CodeClosingControl     = "221"
	CodeEnteringPassive    = "227"
	CodeLoggedIn           = "230"
	CodeNeedPassword       = "331"
	CodeNeedAccount        = "332"
	CodeServiceUnavailable = "421"
)

// Reply is a server reply: a three-digit code and the text that follows it.
// For multi-line replies the lines are joined with single spaces.
//
// Text never contains the code or the separator that follows it.
type Reply struct {
	// Code is the three-digit reply code, e.g. "220".
	Code string

	// Text is the human-readable message.
	Text string
}

// Number returns the reply code as an integer, or 0 if the code is not numeric.
func (r Reply) Number() int {
	n, err := strconv.Atoi(r.Code)
	if err != nil {
		return 0
	}
	return n
}

// Is1xx returns true if the reply is a positive preliminary reply.
func (r Reply) Is1xx() bool {
	n := r.Number()
	return n >= 100 && n < 200
}

// Is2xx returns true if the reply is a positive completion reply.
func (r Reply) Is2xx() bool {
	n := r.Number()
	return n >= 200 && n < 300
}

// Is3xx returns true if the reply is a positive intermediate reply.
func (r Reply) Is3xx() bool {
	n := r.Number()
	return n >= 300 && n < 400
}

// Is4xx returns true if the reply is a transient negative reply.
func (r Reply) Is4xx() bool {
	n := r.Number()
	return n >= 400 && n < 500
}

// Is5xx returns true if the reply is a permanent negative reply.
func (r Reply) Is5xx() bool {
	n := r.Number()
	return n >= 500 && n < 600
}

// String returns the reply as "code text".
func (r Reply) String() string {
	if r.Text == "" {
		return r.Code
	}
	return r.Code + " " + r.Text
}

// ValidateReply returns r unchanged if its code is one of expected.
// Otherwise it returns a KindProtocol *Error carrying the reply code and text.
func ValidateReply(r Reply, expected ...string) (Reply, error) {
	return validateReply("reply", r, expected)
}

func validateReply(op string, r Reply, expected []string) (Reply, error) {
	for _, code := range expected {
		if r.Code == code {
			return r, nil
		}
	}
	return r, replyError(op, r)
}

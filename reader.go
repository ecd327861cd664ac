package ftp

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// eol terminates every command and reply line.
const eol = "\r\n"

// readReply reads a complete reply from the control connection.
//
// Single-line format: "220 Welcome\r\n"
// Multi-line format:
//
//	"150-Opening\r\n"
//	" more text\r\n"
//	"150 done\r\n"
//
// A multi-line reply ends at the first line that starts with the same code
// followed by a space. Intermediate lines are appended to the text with a
// single space between them; a repeated "150-" prefix and leading blanks are
// dropped, so the example above reads as "Opening more text done".
func readReply(r *bufio.Reader) (Reply, error) {
	first, err := readLine(r)
	if err == io.EOF || (err == nil && first == "") {
		return Reply{}, ioError("read reply", "unexpected empty reply", nil)
	}
	if err != nil {
		return Reply{}, ioError("read reply", "failed to read reply", err)
	}

	if len(first) < 3 || !isDigits(first[:3]) {
		return Reply{}, protocolError("read reply", fmt.Sprintf("malformed reply %q", first))
	}
	code := first[:3]

	if len(first) == 3 {
		return Reply{Code: code}, nil
	}

	switch first[3] {
	case ' ':
		return Reply{Code: code, Text: first[4:]}, nil
	case '-':
	default:
		return Reply{}, protocolError("read reply", fmt.Sprintf("malformed reply %q", first))
	}

	var text strings.Builder
	text.WriteString(first[4:])

	for {
		line, err := readLine(r)
		if err == io.EOF {
			return Reply{}, ioError("read reply", "unexpected end of multi-line reply", nil)
		}
		if err != nil {
			return Reply{}, ioError("read reply", "failed to read reply", err)
		}

		if len(line) > 3 && line[:3] == code && line[3] == ' ' {
			appendText(&text, line[4:])
			return Reply{Code: code, Text: text.String()}, nil
		}

		appendText(&text, continuationText(line, code))
	}
}

// readLine returns the next line without its terminator. An unterminated
// final line is returned as is; io.EOF is only returned when nothing was read.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, eol), nil
}

func continuationText(line, code string) string {
	if len(line) > 3 && line[:3] == code && line[3] == '-' {
		line = line[4:]
	}
	return strings.TrimLeft(line, " \t")
}

func appendText(b *strings.Builder, s string) {
	if s == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(s)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

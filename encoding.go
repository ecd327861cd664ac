package ftp

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ParseEncoding returns the character encoding for a name such as "latin1",
// "cp1252", "big5" or "ebcdic". "utf-8" and "ascii" return nil, meaning the
// control channel passes bytes through unchanged.
func ParseEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8", "ascii", "us-ascii":
		return nil, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "ebcdic", "ebcdic-us", "cp037":
		return charmap.CodePage037, nil
	case "ebcdic-1047", "cp1047":
		return charmap.CodePage1047, nil
	case "big5", "big-5", "cp950":
		return traditionalchinese.Big5, nil
	case "gbk", "cp936":
		return simplifiedchinese.GBK, nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}

// WithEncoding makes the control channel decode replies from enc and encode
// commands into it. Data connections are not affected.
func WithEncoding(enc encoding.Encoding) Option {
	return func(c *ControlChannel) error {
		if enc == nil {
			return fmt.Errorf("nil encoding")
		}
		c.encoding = enc
		return nil
	}
}

// newReader returns the reply reader for conn.
func (c *ControlChannel) newReader(conn io.Reader) *bufio.Reader {
	if c.encoding == nil {
		return bufio.NewReader(conn)
	}
	return bufio.NewReader(transform.NewReader(conn, c.encoding.NewDecoder()))
}

// newWriter returns the command writer for conn.
func (c *ControlChannel) newWriter(conn io.Writer) *bufio.Writer {
	if c.encoding == nil {
		return bufio.NewWriter(conn)
	}
	return bufio.NewWriter(transform.NewWriter(conn, c.encoding.NewEncoder()))
}

package ftp

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// EncodeHostPort splits an IPv4 address and port into the six octets used by
// PORT and PASV: the four address bytes in network order, then port>>8 and
// port&0xff.
func EncodeHostPort(ip netip.Addr, port uint16) ([6]byte, error) {
	ip = ip.Unmap()
	if !ip.Is4() {
		return [6]byte{}, protocolError("PORT", fmt.Sprintf("%s is not an IPv4 address", ip))
	}
	a := ip.As4()
	return [6]byte{a[0], a[1], a[2], a[3], byte(port >> 8), byte(port & 0xff)}, nil
}

// DecodeHostPort is the inverse of EncodeHostPort.
func DecodeHostPort(parts [6]byte) netip.AddrPort {
	ip := netip.AddrFrom4([4]byte{parts[0], parts[1], parts[2], parts[3]})
	port := uint16(parts[4])<<8 + uint16(parts[5])
	return netip.AddrPortFrom(ip, port)
}

// FormatHostPort renders the six octets as the PORT argument
// "h1,h2,h3,h4,p1,p2".
// Converts 192.168.1.100:50000 to "192,168,1,100,195,80"
func FormatHostPort(parts [6]byte) string {
	var b strings.Builder
	for i, v := range parts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(v)))
	}
	return b.String()
}

// ParsePASV extracts the data address from the text of a 227 reply.
//
// The tuple is normally enclosed in parentheses:
//
//	Entering Passive Mode (128,3,122,1,15,87).
//
// Some mainframe servers leave the parentheses out, in which case everything
// after the word MODE and the single character following it is taken as the
// tuple:
//
//	Entering Passive Mode 128,3,122,1,15,87
//
// Both yield 128.3.122.1:3927. Exactly six components in the range 0-255 are
// accepted; anything else is a KindProtocol error.
func ParsePASV(text string) (netip.AddrPort, error) {
	region, ok := pasvRegion(text)
	if !ok || region == "" || strings.HasSuffix(region, ",") {
		return netip.AddrPort{}, malformedPASV(text)
	}

	var parts [6]byte
	n := 0
	start := 0
	for i := 0; i < len(region); i++ {
		ch := region[i]
		if ch != ',' && (ch < '0' || ch > '9') {
			return netip.AddrPort{}, malformedPASV(text)
		}

		if ch == ',' || i+1 == len(region) {
			end := i
			if ch != ',' {
				end = i + 1
			}
			if n == len(parts) {
				return netip.AddrPort{}, malformedPASV(text)
			}
			v, err := strconv.ParseUint(region[start:end], 10, 8)
			if err != nil {
				return netip.AddrPort{}, malformedPASV(text)
			}
			parts[n] = byte(v)
			n++
			start = i + 1
		}
	}

	if n != len(parts) {
		return netip.AddrPort{}, malformedPASV(text)
	}
	return DecodeHostPort(parts), nil
}

// pasvRegion returns the part of a PASV reply that holds the address tuple.
func pasvRegion(text string) (string, bool) {
	if open := strings.IndexByte(text, '('); open >= 0 {
		end := strings.IndexByte(text[open+1:], ')')
		if end < 0 {
			return "", false
		}
		return text[open+1 : open+1+end], true
	}
	if strings.IndexByte(text, ')') >= 0 {
		return "", false
	}

	i := lastIndexFold(text, "MODE")
	if i < 0 {
		return "", false
	}
	// one separator, then the tuple runs to the end of the text
	rest := text[i+len("MODE"):]
	if rest == "" {
		return "", false
	}
	return rest[1:], true
}

// lastIndexFold is strings.LastIndex with ASCII case folding.
func lastIndexFold(s, substr string) int {
	for i := len(s) - len(substr); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func malformedPASV(text string) *Error {
	return protocolError("PASV", "malformed PASV reply: "+text)
}

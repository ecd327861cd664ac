// Package ftp implements the client side of the FTP control channel: the
// command/reply exchange of RFC 959 and the negotiation of data connections
// in active (PORT) and passive (PASV) mode.
//
// # Overview
//
// This package provides the protocol primitives a file-transfer layer is
// built on:
//   - ControlChannel: TCP connect, greeting validation, commands and replies
//   - Reply framing for single-line and multi-line replies
//   - Data connection negotiation in active and passive mode
//   - Encoding and decoding of the h1,h2,h3,h4,p1,p2 address tuple
//
// Listing parsers, REST/resume, TLS and login sequencing are left to the
// caller.
//
// # Basic Usage
//
// Connect to a server and issue commands:
//
//	cc, err := ftp.Dial("ftp.example.com:21", ftp.WithTimeout(10*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cc.Quit()
//
//	if _, err := cc.Expect("USER anonymous", ftp.CodeNeedPassword); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := cc.Expect("PASS guest@", ftp.CodeLoggedIn); err != nil {
//	    log.Fatal(err)
//	}
//
// # Data Connections
//
// Passive mode returns a connected socket:
//
//	dc, err := cc.OpenDataConnection(ctx, ftp.Passive)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dc.Close()
//
//	if _, err := cc.Expect("RETR file.txt", "125", "150"); err != nil {
//	    log.Fatal(err)
//	}
//	conn, _ := dc.Accept(ctx)
//	io.Copy(os.Stdout, conn)
//
// Active mode returns a pending connection: the server only connects after
// the transfer command, so Accept must come after it. Accept blocks until
// the server connects, the channel timeout elapses or ctx is cancelled.
//
// # Concurrency
//
// A ControlChannel carries one command at a time and must not be shared
// between goroutines without external serialisation. Nothing is retried.
//
// # Error Handling
//
// Every error is an *Error whose Kind is KindIO, KindProtocol or
// KindIllegalState:
//
//	if _, err := cc.Expect("CWD /pub", "250"); err != nil {
//	    var fe *ftp.Error
//	    if errors.As(err, &fe) && fe.Kind == ftp.KindProtocol {
//	        fmt.Printf("Command: %s\n", fe.Op)
//	        fmt.Printf("Response: %s\n", fe.Text)
//	        fmt.Printf("Code: %d\n", fe.Code)
//	    }
//	}
//
// # Character Encodings
//
// Replies and commands are exchanged as raw bytes by default. For servers
// that speak a legacy code page, WithEncoding translates the control
// channel text to and from UTF-8:
//
//	enc, _ := ftp.ParseEncoding("latin1")
//	cc, err := ftp.Dial("ftp.example.com:21", ftp.WithEncoding(enc))
//
// # Logging
//
// With WithLogger, commands and replies are logged at debug level. The
// argument of PASS is replaced by asterisks in the log; the bytes sent to the
// server are not altered.
package ftp

package probe

import (
	"github.com/pkg/errors"

	ftp "github.com/gonzalop/ftpcontrol"
)

// login sends USER and, unless the server already accepted the user, PASS.
func login(cc *ftp.ControlChannel, user, password string) error {
	reply, err := cc.Expect("USER "+user, ftp.CodeLoggedIn, ftp.CodeNeedPassword)
	if err != nil {
		return err
	}
	if reply.Code == ftp.CodeLoggedIn {
		return nil
	}

	reply, err = cc.Expect("PASS "+password, ftp.CodeLoggedIn, ftp.CodeNeedAccount)
	if err != nil {
		return err
	}
	if reply.Code == ftp.CodeNeedAccount {
		return errors.Errorf("login as %s needs an account", user)
	}
	return nil
}

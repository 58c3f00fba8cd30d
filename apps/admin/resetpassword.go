package main

import "context"

func (cli *commandLine) resetPassword(email, pwd string) error {
	return cli.usrSvc.AdminSetPassword(context.Background(), email, pwd)
}

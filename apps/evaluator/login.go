package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/psbppwb/penilaian/core/session"
)

func (cli *commandLine) login(username, password string) error {
	sess, err := cli.api.Login(context.Background(), username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s (%s)\n", sess.User.Name, strings.Join(sess.User.Roles, ", "))
	return nil
}

func (cli *commandLine) loginRFID(code string) error {
	sess, err := cli.api.LoginRFID(context.Background(), code)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s (%s)\n", sess.User.Name, strings.Join(sess.User.Roles, ", "))
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.api.Logout(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Logged out.")
	return nil
}

func (cli *commandLine) whoami() error {
	sess := cli.sessions.Current()
	if !sess.IsAuthenticated() {
		fmt.Fprintln(cli.out, "Not logged in.")
		return nil
	}

	fmt.Fprintf(cli.out, "%s (@%s)\n", sess.User.Name, sess.User.Username)
	fmt.Fprintf(cli.out, "Roles: %s\n", strings.Join(sess.User.Roles, ", "))
	if sess.LoginAt != nil {
		fmt.Fprintf(cli.out, "Logged in at: %s\n", sess.LoginAt.Local().Format(time.RFC1123))
	}
	if claims, err := session.DecodeClaims(sess.Token); err == nil && claims.ExpiresAt > 0 {
		fmt.Fprintf(cli.out, "Token expires: %s\n", time.Unix(claims.ExpiresAt, 0).Local().Format(time.RFC1123))
	}
	return nil
}

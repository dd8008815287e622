package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
)

// addUser updates or creates an account.Account, activating it.
func (cli *commandLine) addUser(uname, email, pwd string, roles []string) error {
	acc, err := cli.accSvc.AddOrUpdate(context.Background(), uname, email, pwd, roles)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "account %q saved\n", acc.ID)
	return nil
}

func (cli *commandLine) resetPassword(login, pwd string) error {
	return cli.accSvc.SetPassword(context.Background(), login, pwd)
}

func (cli *commandLine) deleteUser(login string) error {
	ctx := context.Background()
	acc, err := cli.accSvc.GetByUsernameOrEmail(ctx, login)
	if err != nil {
		return err
	}
	if _, err := cli.accSvc.Delete(ctx, acc.ID); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "account %q deleted\n", acc.ID)
	return nil
}

func (cli *commandLine) listUsers() error {
	accounts, err := cli.accSvc.QueryAll(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLES\tACTIVE")
	for _, acc := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", acc.ID, acc.Username, acc.Email, strings.Join(acc.Roles, ","), acc.Active())
	}
	return w.Flush()
}

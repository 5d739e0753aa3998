package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var accountArgFlag = cli.StringFlag{
	Name:  "account",
	Usage: "the account to query, defaults to the one in local state",
}

var withdrawCmd = cli.Command{
	Name:   "withdraw",
	Usage:  "withdraw everything the account is entitled to",
	Action: withdrawAction,
}

var canWithdrawCmd = cli.Command{
	Name:   "canwithdraw",
	Usage:  "tell whether a withdrawal would transfer anything",
	Flags:  []cli.Flag{&accountArgFlag},
	Action: accountQueryAction("can-withdraw"),
}

var pendingCmd = cli.Command{
	Name:   "pending",
	Usage:  "show the detail of what a withdrawal would transfer",
	Flags:  []cli.Flag{&accountArgFlag},
	Action: accountQueryAction("pending"),
}

var cursorCmd = cli.Command{
	Name:   "cursor",
	Usage:  "show the next deposit to be paid to the account",
	Flags:  []cli.Flag{&accountArgFlag},
	Action: accountQueryAction("cursor"),
}

var withdrawalsCmd = cli.Command{
	Name:  "withdrawals",
	Usage: "list the withdrawals of the account, most recent first",
	Flags: []cli.Flag{
		&accountArgFlag,
		&cli.IntFlag{
			Name:  "page",
			Usage: "the page number",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "size",
			Usage: "the page size",
			Value: 10,
		},
	},
	Action: withdrawalsAction,
}

func withdrawAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	resp, err := client.do(http.MethodPost, "/v1/withdraw", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func accountQueryAction(route string) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		account, err := getAccount(ctx)
		if err != nil {
			return err
		}
		client, err := getClient()
		if err != nil {
			return err
		}

		resp, err := client.do(http.MethodGet, fmt.Sprintf(
			"/v1/accounts/%s/%s", url.PathEscape(account), route,
		), nil)
		if err != nil {
			return err
		}

		printRespJSON(resp)
		return nil
	}
}

func withdrawalsAction(ctx *cli.Context) error {
	account, err := getAccount(ctx)
	if err != nil {
		return err
	}
	client, err := getClient()
	if err != nil {
		return err
	}

	resp, err := client.do(http.MethodGet, fmt.Sprintf(
		"/v1/accounts/%s/withdrawals?page=%d&size=%d",
		url.PathEscape(account), ctx.Int("page"), ctx.Int("size"),
	), nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func getAccount(ctx *cli.Context) (string, error) {
	if account := ctx.String("account"); account != "" {
		return account, nil
	}
	state, err := getState()
	if err != nil {
		return "", err
	}
	if account := state["account"]; account != "" {
		return account, nil
	}
	return "", errors.New("missing account, use --account or `config set account`")
}

package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"
)

var skipCmd = cli.Command{
	Name:      "skip",
	Usage:     "give up the own share of a deposit not withdrawn yet",
	ArgsUsage: "<deposit id>",
	Action:    skipAction,
}

var cancelCmd = cli.Command{
	Name:      "cancel",
	Usage:     "cancel a deposit for every beneficiary, admin only",
	ArgsUsage: "<deposit id>",
	Action:    cancelAction,
}

var overridesCmd = cli.Command{
	Name:      "overrides",
	Usage:     "tell whether a deposit is cancelled or skipped by an account",
	ArgsUsage: "<deposit id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "account",
			Usage: "the account to check the skip for",
		},
	},
	Action: overridesAction,
}

func depositIDArg(ctx *cli.Context, command string) (string, error) {
	if ctx.NArg() != 1 {
		return "", &invalidUsageError{ctx, command}
	}
	id := ctx.Args().First()
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("invalid deposit id %q", id)
	}
	return id, nil
}

func skipAction(ctx *cli.Context) error {
	return postOverride(ctx, "skip")
}

func cancelAction(ctx *cli.Context) error {
	return postOverride(ctx, "cancel")
}

func postOverride(ctx *cli.Context, command string) error {
	id, err := depositIDArg(ctx, command)
	if err != nil {
		return err
	}
	client, err := getClient()
	if err != nil {
		return err
	}

	resp, err := client.do(
		http.MethodPost, fmt.Sprintf("/v1/deposits/%s/%s", id, command), nil,
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func overridesAction(ctx *cli.Context) error {
	id, err := depositIDArg(ctx, "overrides")
	if err != nil {
		return err
	}
	client, err := getClient()
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/v1/deposits/%s/overrides", id)
	if account := ctx.String("account"); account != "" {
		path += "?account=" + url.QueryEscape(account)
	}
	resp, err := client.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/urfave/cli/v2"
)

const nativeAssetFlag = "native"

var depositCmd = cli.Command{
	Name:  "deposit",
	Usage: "append a deposit to the ledger",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "asset",
			Usage: "either native or the identifier of the token",
			Value: nativeAssetFlag,
		},
		&cli.Uint64Flag{
			Name:     "amount",
			Usage:    "the amount to deposit",
			Required: true,
		},
		&cli.Uint64Flag{
			Name:  "marker",
			Usage: "the weight snapshot marker, defaults to the latest settled one",
		},
		&cli.StringFlag{
			Name:  "key",
			Usage: "idempotency key, retrying with the same key appends the deposit once",
		},
	},
	Action: depositAction,
}

var depositsCmd = cli.Command{
	Name:  "deposits",
	Usage: "list the deposits of the ledger",
	Flags: []cli.Flag{
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
	Action: listDepositsAction,
	Subcommands: []*cli.Command{
		{
			Name:   "count",
			Usage:  "return the number of deposits",
			Action: depositCountAction,
		},
		{
			Name:      "get",
			Usage:     "return the deposit with the given id",
			ArgsUsage: "<id>",
			Action:    getDepositAction,
		},
	},
}

func parseAsset(str string) map[string]string {
	if strings.EqualFold(str, nativeAssetFlag) {
		return map[string]string{"kind": "NATIVE"}
	}
	return map[string]string{"kind": "TOKEN", "identifier": str}
}

func depositAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"asset":  parseAsset(ctx.String("asset")),
		"amount": ctx.Uint64("amount"),
	}
	if ctx.IsSet("marker") {
		body["marker"] = ctx.Uint64("marker")
	}
	if key := ctx.String("key"); key != "" {
		body["idempotency_key"] = key
	}

	resp, err := client.do(http.MethodPost, "/v1/deposits", body)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func listDepositsAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	resp, err := client.do(http.MethodGet, fmt.Sprintf(
		"/v1/deposits?page=%d&size=%d", ctx.Int("page"), ctx.Int("size"),
	), nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func depositCountAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	resp, err := client.do(http.MethodGet, "/v1/deposits/count", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func getDepositAction(ctx *cli.Context) error {
	id, err := depositIDArg(ctx, "deposits get")
	if err != nil {
		return err
	}
	client, err := getClient()
	if err != nil {
		return err
	}

	resp, err := client.do(http.MethodGet, fmt.Sprintf("/v1/deposits/%s", id), nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

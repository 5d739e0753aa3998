package main

import (
	"fmt"

	httpinterface "github.com/tdex-network/payoutd/internal/interfaces/http"
	"github.com/urfave/cli/v2"
)

var tokenCmd = cli.Command{
	Name:  "token",
	Usage: "mint a bearer token for an account, requires the daemon auth secret",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "secret",
			Usage:    "the AUTH_SECRET of the daemon",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "account",
			Usage:    "the account authenticated by the token",
			Required: true,
		},
		&cli.DurationFlag{
			Name:  "ttl",
			Usage: "validity of the token, 0 for no expiration",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "store the token in the local state",
		},
	},
	Action: tokenAction,
}

func tokenAction(ctx *cli.Context) error {
	token, err := httpinterface.NewToken(
		[]byte(ctx.String("secret")), ctx.String("account"), ctx.Duration("ttl"),
	)
	if err != nil {
		return err
	}

	if ctx.Bool("save") {
		if err := setState(map[string]string{"token": token}); err != nil {
			return err
		}
	}

	fmt.Println(token)
	return nil
}

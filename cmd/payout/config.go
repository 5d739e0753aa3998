package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"
)

var (
	rpcFlag = cli.StringFlag{
		Name:  "rpcserver",
		Usage: "payoutd daemon url",
		Value: "http://localhost:9090",
	}

	tokenFlag = cli.StringFlag{
		Name:  "token",
		Usage: "bearer token authenticating the account",
		Value: "",
	}

	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "the account to act as when the daemon runs without auth",
		Value: "",
	}
)

var configCmd = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the payout CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&rpcFlag,
				&tokenFlag,
				&accountFlag,
			},
		},
	},
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Println(key + ": " + state[key])
	}

	return nil
}

func configInitAction(c *cli.Context) error {
	return setState(map[string]string{
		"rpcserver": c.String("rpcserver"),
		"token":     c.String("token"),
		"account":   c.String("account"),
	})
}

func configSetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s %s has been set\n", key, value)
	return nil
}

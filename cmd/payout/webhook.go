package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var webhookCmd = cli.Command{
	Name:  "webhook",
	Usage: "manage the webhooks notified of ledger events, admin only",
	Subcommands: []*cli.Command{
		{
			Name:  "add",
			Usage: "add a webhook registered for some event",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "endpoint",
					Usage:    "the endpoint where to notify the webhook",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "secret",
					Usage: "the eventual secret to authenticate requests",
				},
				&cli.StringFlag{
					Name: "event",
					Usage: "the event for which the webhook gets notified: " +
						"DEPOSIT_CREATED, PAYMENT_SKIPPED, PAYMENT_CANCELLED, " +
						"WITHDRAWAL_COMPLETED or * for any",
					Value: "*",
				},
			},
			Action: addWebhookAction,
		},
		{
			Name:      "remove",
			Usage:     "remove the webhook with the given id",
			ArgsUsage: "<id>",
			Action:    removeWebhookAction,
		},
		{
			Name:  "list",
			Usage: "list the webhooks, optionally filtered by event",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "event",
					Usage: "the event to filter webhooks for",
				},
			},
			Action: listWebhooksAction,
		},
	},
}

func addWebhookAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	resp, err := client.do(http.MethodPost, "/v1/webhooks", map[string]string{
		"event":    ctx.String("event"),
		"endpoint": ctx.String("endpoint"),
		"secret":   ctx.String("secret"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "remove"}
	}
	client, err := getClient()
	if err != nil {
		return err
	}

	resp, err := client.do(http.MethodDelete, fmt.Sprintf(
		"/v1/webhooks/%s", url.PathEscape(ctx.Args().First()),
	), nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	path := "/v1/webhooks"
	if event := ctx.String("event"); event != "" {
		path += "?event=" + url.QueryEscape(event)
	}
	resp, err := client.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

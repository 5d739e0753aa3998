package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/tdex-network/payoutd/pkg/util"
	"github.com/urfave/cli/v2"
)

const (
	accountHeader  = "X-Payout-Account"
	requestTimeout = 30 * time.Second
)

var (
	payoutDataDir = btcutil.AppDataDir("payout-cli", false)
	statePath     = filepath.Join(payoutDataDir, "state.json")
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "payout CLI"
	app.Usage = "Command line interface for payoutd users and admins"
	app.Commands = append(
		app.Commands,
		&configCmd,
		&tokenCmd,
		&depositCmd,
		&depositsCmd,
		&skipCmd,
		&cancelCmd,
		&overridesCmd,
		&withdrawCmd,
		&canWithdrawCmd,
		&pendingCmd,
		&withdrawalsCmd,
		&cursorCmd,
		&webhookCmd,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("malformed state file %s: %w", statePath, err)
	}

	return data, nil
}

func setState(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(statePath), os.ModeDir|0755); err != nil {
		return err
	}

	currentData := map[string]string{}
	if _, err := os.Stat(statePath); err == nil {
		if currentData, err = getState(); err != nil {
			return err
		}
	}

	jsonString, err := json.Marshal(merge(currentData, data))
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0600); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

// client sends authenticated requests to the daemon configured in state.
type client struct {
	baseURL    string
	header     map[string]string
	httpClient *http.Client
}

func getClient() (*client, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	baseURL, ok := state["rpcserver"]
	if !ok || baseURL == "" {
		return nil, errors.New("set rpcserver with `config set rpcserver`")
	}

	header := map[string]string{}
	if token := state["token"]; token != "" {
		header["Authorization"] = fmt.Sprintf("Bearer %s", token)
	} else if account := state["account"]; account != "" {
		header[accountHeader] = account
	} else {
		return nil, errors.New(
			"set either token or account with `config set token|account`",
		)
	}

	return &client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		header:     header,
		httpClient: &http.Client{},
	}, nil
}

func (c *client) do(method, path string, body interface{}) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var resp interface{}
	if err := util.DoJSONRequest(
		ctx, c.httpClient, method, c.baseURL+path, body, &resp, c.header,
	); err != nil {
		return nil, err
	}
	return resp, nil
}

func printRespJSON(resp interface{}) {
	if resp == nil {
		fmt.Println("done")
		return
	}
	jsonStr, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}
	fmt.Println(string(jsonStr))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[payout] %v\n", err)
	}
	os.Exit(1)
}

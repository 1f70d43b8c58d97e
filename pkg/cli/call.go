package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kfpc0808/researchtmfax/pkg/model"
)

func callCommand() *cli.Command {
	var (
		cfg   config
		input string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON file containing the request (default: stdin)",
			Destination: &input,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "call",
		Usage: "Dispatch a single request and print the response",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			var (
				raw []byte
				err error
			)
			if input != "" {
				raw, err = os.ReadFile(input)
				if err != nil {
					return goerr.Wrap(err, "failed to read request file", goerr.V("path", input))
				}
			} else {
				raw, err = io.ReadAll(os.Stdin)
				if err != nil {
					return goerr.Wrap(err, "failed to read request from stdin")
				}
			}

			var req model.Request
			if err := json.Unmarshal(raw, &req); err != nil {
				return goerr.Wrap(err, "failed to parse request")
			}

			uc, err := cfg.newUseCase(ctx)
			if err != nil {
				return err
			}

			result, err := uc.Dispatch(ctx, &req)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to encode response")
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

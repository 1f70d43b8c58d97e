package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"

	"github.com/kfpc0808/researchtmfax/pkg/adapter"
	"github.com/kfpc0808/researchtmfax/pkg/usecase/gateway"
	"github.com/kfpc0808/researchtmfax/pkg/utils/logging"
)

// config holds configuration values
type config struct {
	// Backing spreadsheet
	spreadsheetID string
	credentials   string

	// Business rules
	rulesPath string

	logLevel string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "spreadsheet-id",
			Aliases:     []string{"s"},
			Usage:       "ID of the backing Google Sheets document",
			Sources:     cli.EnvVars("GOOGLE_SHEET_ID"),
			Destination: &cfg.spreadsheetID,
		},
		&cli.StringFlag{
			Name:        "credentials",
			Aliases:     []string{"c"},
			Usage:       "Path to a service account credentials JSON file (default: application default credentials)",
			Sources:     cli.EnvVars("GOOGLE_APPLICATION_CREDENTIALS"),
			Destination: &cfg.credentials,
		},
		&cli.StringFlag{
			Name:        "rules",
			Usage:       "Path to a YAML contact rule configuration (default: built-in rules)",
			Sources:     cli.EnvVars("RESEARCHTMFAX_RULES"),
			Destination: &cfg.rulesPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("RESEARCHTMFAX_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// setupLogger installs the configured logger as process default
func (cfg *config) setupLogger() {
	logging.SetDefault(logging.New(cfg.logLevel, os.Stdout))
}

// newTabular creates the Sheets-backed tabular adapter
func (cfg *config) newTabular(ctx context.Context) (adapter.Tabular, error) {
	if cfg.spreadsheetID == "" {
		return nil, goerr.New("spreadsheet-id is required")
	}

	var opts []option.ClientOption
	if cfg.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.credentials))
	}

	tabular, err := adapter.NewSheets(ctx, cfg.spreadsheetID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create sheets adapter")
	}
	return tabular, nil
}

// newUseCase creates the gateway use case with the configured rules
func (cfg *config) newUseCase(ctx context.Context) (*gateway.UseCase, error) {
	tabular, err := cfg.newTabular(ctx)
	if err != nil {
		return nil, err
	}

	rules, err := gateway.LoadContactRules(cfg.rulesPath)
	if err != nil {
		return nil, err
	}

	return gateway.New(tabular, gateway.WithRules(rules)), nil
}

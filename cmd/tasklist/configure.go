package main

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tasklist/tasklist/internal/config"
	"github.com/tasklist/tasklist/internal/schema"
	"github.com/tasklist/tasklist/internal/trello"
	"github.com/tasklist/tasklist/internal/ui"
)

func newConfigureCmd(a *app) *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Create the configuration file",
		Long: `Prompt for the Trello credentials, the default board and list, and the
defaults applied to new tasks, then write the configuration file readable by
the owner only. The credentials are checked against Trello before saving.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.prompt()
			a.printf("Configuring tasklist...\n")

			var cfg config.Config
			cfg.Trello.BaseURL = baseURL
			fields := []struct {
				question string
				secret   bool
				dst      *string
			}{
				{"Enter your Trello API key", true, &cfg.Trello.APIKey},
				{"Enter your Trello API token", true, &cfg.Trello.Token},
				{"Enter your Trello board ID", false, &cfg.Trello.BoardID},
				{"Enter your Trello list ID for default tasks", false, &cfg.Trello.ListID},
			}
			for _, f := range fields {
				v, err := p.Input(f.question, f.secret)
				if err != nil {
					return err
				}
				*f.dst = v
			}

			opts := []trello.Option{}
			if a.opts.HTTPClient != nil {
				opts = append(opts, trello.WithHTTPClient(a.opts.HTTPClient))
			}
			client := trello.New(trello.Credentials{
				APIKey:  cfg.Trello.APIKey,
				Token:   cfg.Trello.Token,
				BaseURL: cfg.Trello.BaseURL,
			}, opts...)
			if !client.CheckConnectivity(cmd.Context()) {
				return errors.New("invalid Trello API key or token")
			}

			for {
				v, err := p.Input("Enter a default priority (1-3, optional, press Enter to skip)", false)
				if err != nil {
					return err
				}
				if v == "" {
					cfg.Defaults.Priority = schema.DefaultPriority
					break
				}
				n, err := strconv.Atoi(v)
				if err != nil {
					a.warnf("Invalid input. Please enter a number.")
					continue
				}
				if schema.ValidatePriority(n) != nil {
					a.warnf("Invalid priority. Please enter a number between 1 and 3.")
					continue
				}
				cfg.Defaults.Priority = n
				break
			}

			category, err := p.Input("Enter a default category (optional, press Enter to skip)", false)
			if err != nil {
				return err
			}
			cfg.Defaults.Category = category

			if err := config.Save(a.configPath, &cfg); err != nil {
				return err
			}
			a.printf("%s Configuration saved to %s\n", ui.RenderPass("✓"), a.configPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "api-url", "", "Trello API root (default: the public API)")
	_ = cmd.Flags().MarkHidden("api-url")
	return cmd
}

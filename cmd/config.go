package cmd

import (
	"github.com/gnames/dsrecon/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const masked = "******"

// getConfigCmd returns the config command.
func getConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after config.yaml, environment variables
and .env are applied. Passwords and secret keys are masked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runConfig(cmd)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
}

func runConfig(cmd *cobra.Command) error {
	out, err := configYAML(cfg)
	if err != nil {
		return err
	}
	gn.Info("Config file: <em>%s</em>", config.ConfigFilePath(cfg.HomeDir))
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// configYAML renders c with secrets masked.
func configYAML(c *config.Config) ([]byte, error) {
	res := *c
	if res.Database.Password != "" {
		res.Database.Password = masked
	}
	if res.S3.SecretKey != "" {
		res.S3.SecretKey = masked
	}
	return yaml.Marshal(&res)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/utils"
)

func tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print an admin token for the configured auth.secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := utils.GenerateAuthToken(&utils.AuthTokenWrapper{
				Secret: viper.GetString(constants.ViperSecretKey),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}

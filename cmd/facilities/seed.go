package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ougirez/facilities/internal/service"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <schema.yaml>",
		Short: "Register variables, calculated variables and key renames from a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			seed, err := service.LoadSeed(f)
			if err != nil {
				return err
			}

			svc, closeStore, err := openService(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			return svc.ApplySeed(ctx, seed)
		},
	}
}

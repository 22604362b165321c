package main

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/ougirez/facilities/internal/domain/dto"
)

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <records.json>",
		Short: "Build facilities from a JSON array of raw survey records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			records, err := dto.DecodeRecords(file)
			file.Close()
			if err != nil {
				return fmt.Errorf("dto.DecodeRecords, path-%s: %w", args[0], err)
			}

			svc, closeStore, err := openService(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			results, err := svc.Ingest.IngestBatch(ctx, records)
			if err != nil {
				return err
			}

			out, err := sonic.ConfigStd.MarshalIndent(results, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}

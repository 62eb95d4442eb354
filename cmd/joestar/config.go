package main

import (
	"github.com/spf13/cobra"

	"github.com/joestar-dev/joestar/internal/errors"
)

func configCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.cfg.Marshal()
			if err != nil {
				return errors.New("J102").Wrap(err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

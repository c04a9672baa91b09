package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tinyfs/tinyfs/tinyfs"
)

func mkfsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkfs <disk> <size-in-bytes>",
		Short: "Format a blank TinyFS volume",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid size %q: %w", args[1], err)
			}
			if err := tinyfs.Mkfs(args[0], size); err != nil {
				return err
			}
			log.WithField("disk", args[0]).WithField("bytes", size).Info("formatted volume")
			return nil
		},
	}
}

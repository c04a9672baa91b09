package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyfs/tinyfs/tinyfs"
)

func fsckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fsck <disk>",
		Short: "Check the partition invariant across the superblock, inode chain, extent chains and free list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := tinyfs.New(tinyfs.WithLogger(log))
			if err := fs.Mount(args[0]); err != nil {
				return err
			}
			defer fs.Unmount()

			problems, err := fs.Fsck()
			if err != nil {
				return err
			}
			if len(problems) == 0 {
				fmt.Println("ok: every block is reachable exactly once")
				return nil
			}
			for _, p := range problems {
				fmt.Println(p.String())
			}
			return fmt.Errorf("%d consistency problem(s) found", len(problems))
		},
	}
}

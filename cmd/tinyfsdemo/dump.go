package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tinyfs/tinyfs/backend/file"
	"github.com/tinyfs/tinyfs/block"
	"github.com/tinyfs/tinyfs/util"
)

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <disk> <block-number>",
		Short: "Hex dump a single raw block",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid block number %q: %w", args[1], err)
			}
			return runDump(args[0], n)
		},
	}
}

func runDump(path string, blockNum int) error {
	storage, err := file.OpenOrCreate(path, 0, block.Size)
	if err != nil {
		return err
	}
	defer storage.Close()

	w, err := storage.Writable()
	if err != nil {
		return err
	}

	buf := make([]byte, block.Size)
	if _, err := w.ReadAt(buf, int64(blockNum)*block.Size); err != nil {
		return fmt.Errorf("read block %d: %w", blockNum, err)
	}

	typ, err := block.PeekType(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	} else {
		fmt.Printf("block %d: type=%s\n", blockNum, typ)
	}
	fmt.Print(util.DumpByteSlice(buf, 16, true, true, false, nil))
	return nil
}

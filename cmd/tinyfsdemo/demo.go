package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyfs/tinyfs/tinyfs"
)

// demoCmd runs a scripted cycle: mkfs a default-sized disk, mount, create
// a file, write to it, read it to EOF, seek back to the start, and
// re-read.
func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo <disk>",
		Short: "Run the scripted mkfs/mount/write/read/seek demo cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(args[0])
		},
	}
}

const defaultDiskSize = 10240

func runDemo(path string) error {
	if err := tinyfs.Mkfs(path, defaultDiskSize); err != nil {
		return fmt.Errorf("mkfs: %w", err)
	}

	fs := tinyfs.New(tinyfs.WithLogger(log))
	if err := fs.Mount(path); err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	defer fs.Unmount()
	fmt.Println("Disk mounted")
	fmt.Printf("mountedDiskname: %s\n", path)

	fd, err := fs.OpenFile("file_01")
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	fmt.Printf("new file fileDescriptor: %d\n", fd)

	buffer := []byte("Hello, World!")
	if err := fs.WriteFile(fd, buffer); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	for i := 0; i < len(buffer); i++ {
		b, err := fs.ReadByte(fd)
		if err != nil {
			return fmt.Errorf("read byte %d: %w", i, err)
		}
		fmt.Printf("Byte read %c\n", b)
	}

	if err := fs.Seek(fd, 0); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	b, err := fs.ReadByte(fd)
	if err != nil {
		return fmt.Errorf("read byte after seek: %w", err)
	}
	fmt.Printf("Byte read %c\n", b)

	return nil
}

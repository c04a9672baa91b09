// Command tinyfsdemo is the illustrative CLI around package tinyfs: not
// part of the core block-layer state machine, just argument parsing and
// progress messages wired to it.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	logLevel string
	log      = logrus.StandardLogger()
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tinyfsdemo",
		Short: "Demonstration CLI for the TinyFS block-addressed file system",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bindConfig(cmd)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(mkfsCmd(), demoCmd(), dumpCmd(), fsckCmd())
	return root
}

// bindConfig layers flags over environment variables via viper, so every
// flag can also be set as a TINYFS_-prefixed environment variable.
func bindConfig(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix("TINYFS")
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	if v.IsSet("log-level") {
		logLevel = v.GetString("log-level")
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	log.SetLevel(level)
	return nil
}

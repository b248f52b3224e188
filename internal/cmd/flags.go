// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mia-platform/apiboot/internal/config"
)

const (
	portFlagName  = "port"
	portFlagShort = "p"
	portFlagUsage = "port to listen on, overrides the SERVER_PORT environment variable"

	// LogLevelFlagName is the persistent flag registered by the root command.
	LogLevelFlagName = "log-level"
)

// flags collects the CLI options of the serve command.
type flags struct {
	port int
}

// addFlags registers the CLI flags on cmd.
func (f *flags) addFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.port, portFlagName, portFlagShort, 0, portFlagUsage)
}

// toOptions loads the configuration from the environment and applies the flags on top of it.
func (f *flags) toOptions(cmd *cobra.Command) (*options, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed(portFlagName) {
		cfg.ServerPort = f.port
	}

	logLevelFromFlag := false
	if flag := cmd.Flag(LogLevelFlagName); flag != nil {
		logLevelFromFlag = flag.Changed
	}

	return &options{
		config:           cfg,
		logLevelFromFlag: logLevelFromFlag,
		serverFactory:    serverFactory,
	}, nil
}

// loadConfig can be overridden for testing purposes.
var loadConfig = config.Load

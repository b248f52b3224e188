// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mia-platform/apiboot/internal/config"
	"github.com/mia-platform/apiboot/internal/logger"
	"github.com/mia-platform/apiboot/internal/server"
)

var (
	errInvalidPort = errors.New("invalid port provided")

	// serverFactory bootstraps the server for a serve run.
	// It can be overridden for testing purposes.
	serverFactory = server.NewServer
)

// handleError will do custom print error handling based on the type of error received.
// Configuration errors print the usage too, every error is returned to set the exit code.
func handleError(cmd *cobra.Command, err error) error {
	logger.FromContext(cmd.Context()).Error("serve failed", "error", err.Error())

	switch {
	case errors.Is(err, errInvalidPort), errors.Is(err, config.ErrEnvVariablesNotValid):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
	default:
		cmd.PrintErrln(err)
	}
	return err
}

// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	serveCmdUsage = "serve"
	serveCmdShort = "start the HTTP server"
	serveCmdLong  = `Start the HTTP server.

	The server applies CORS, rate limiting and security headers to every route,
	exposes the application routes under the /api prefix, and serves the OpenAPI
	document on /api-json together with the Swagger UI on /docs.

	The configuration is read from the environment, please refer to the
	documentation for the complete list of variables.`

	serveCmdExample = `# Start the server on the default port
	apiboot serve

	# Start the server on a custom port
	apiboot serve --port 8080`
)

// ServeCmd returns the Cobra command that bootstraps and starts the server.
func ServeCmd() *cobra.Command {
	flags := &flags{}
	cmd := &cobra.Command{
		Use:     serveCmdUsage,
		Short:   heredoc.Doc(serveCmdShort),
		Long:    heredoc.Doc(serveCmdLong),
		Example: heredoc.Doc(serveCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return handleError(cmd, err)
			}
			return nil
		},
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

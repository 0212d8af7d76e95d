package client

import "github.com/spf13/cobra"

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// AddCommands registers watch, submit and health on parent.
func AddCommands(parent *cobra.Command, baseURL BaseURLFunc) {
	parent.AddCommand(
		NewWatchCommand(baseURL),
		NewSubmitCommand(baseURL),
		NewHealthCommand(),
	)
}

package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	psclient "github.com/rzbill/partysearch/internal/client"
)

// NewSubmitCommand constructs the `submit` command. It posts one submission
// body and prints the server's acknowledgement.
func NewSubmitCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the full party search set of one district",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, _ := cmd.Flags().GetString("data")
			file, _ := cmd.Flags().GetString("file")
			body, err := readBody(cmd.InOrStdin(), data, file)
			if err != nil {
				return err
			}
			if !json.Valid(body) {
				return errors.New("submission body is not valid JSON")
			}
			res, err := psclient.NewAPI(baseURL()).Submit(cmd.Context(), body)
			if err != nil {
				var apiErr *psclient.APIError
				if errors.As(err, &apiErr) {
					return fmt.Errorf("rejected: %w", apiErr)
				}
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().String("data", "", "Submission JSON")
	cmd.Flags().StringP("file", "f", "", "Read submission JSON from file (- for stdin)")
	return cmd
}

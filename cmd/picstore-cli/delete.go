package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/anupamd/picstore/clientcli"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id> [id...]",
	Short: "Delete images from the server",
	Long: `Delete one or more images by id.

The object and its metadata record are both removed.

Examples:
  picstore-cli delete 4f3c9a2e-...
  picstore-cli delete -q 4f3c9a2e-... 77b1d0aa-...`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(context.Background(), clientcli.DeleteOptions{IDs: args})
	if err != nil {
		formatter := getFormatter()
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	formatter := getFormatter()
	if err := formatter.FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}

// exitError is returned when we want to exit with a specific code
// but don't want cobra to print an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

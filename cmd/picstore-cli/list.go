package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/anupamd/picstore/clientcli"
)

var (
	listUser       string
	listTag        string
	listVisibility string
	listFilename   string
	listSort       string
	listOrder      string
	listLimit      int
	listAll        bool
	listNextToken  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List images on the server",
	Long: `List images with optional filters.

Examples:
  picstore-cli list
  picstore-cli list --user alice --tag pets
  picstore-cli list --visibility all --sort filename --order asc
  picstore-cli list --all
  picstore-cli list --next-token "MjAyNi0w..."`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listUser, "user-filter", "", "filter by uploading user")
	listCmd.Flags().StringVar(&listTag, "tag", "", "filter by tag")
	listCmd.Flags().StringVar(&listVisibility, "visibility", "", "filter by visibility (all disables the filter)")
	listCmd.Flags().StringVar(&listFilename, "filename", "", "filter by filename substring")
	listCmd.Flags().StringVar(&listSort, "sort", "", "sort field: createdAt, filename")
	listCmd.Flags().StringVar(&listOrder, "order", "", "sort order: asc, desc")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "max results per page (1-100)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "fetch all pages")
	listCmd.Flags().StringVar(&listNextToken, "next-token", "", "pagination token")
}

func runList(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.ListOptions{
		UserID:     listUser,
		Tag:        listTag,
		Visibility: listVisibility,
		Filename:   listFilename,
		Sort:       listSort,
		Order:      listOrder,
		Limit:      listLimit,
		NextToken:  listNextToken,
		All:        listAll,
	}

	result, err := client.List(context.Background(), opts)
	if err != nil {
		formatter := getFormatter()
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	formatter := getFormatter()
	return formatter.FormatList(os.Stdout, result)
}

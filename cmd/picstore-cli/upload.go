package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/anupamd/picstore/clientcli"
)

var (
	uploadRecursive   bool
	uploadContentType string
	uploadDescription string
	uploadVisibility  string
	uploadTags        []string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>",
	Short: "Upload images to the server",
	Long: `Upload one image, or a directory of images with --recursive.

The upload is sent as multipart/form-data with the metadata fields
alongside the file part.

Examples:
  picstore-cli upload ./cat.png
  picstore-cli upload --tags pets,cats --visibility private ./cat.png
  picstore-cli upload -r ./photos/`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
	uploadCmd.Flags().StringVarP(&uploadDescription, "description", "d", "", "image description")
	uploadCmd.Flags().StringVar(&uploadVisibility, "visibility", "", "visibility: public, private, friends (default: public)")
	uploadCmd.Flags().StringSliceVar(&uploadTags, "tags", nil, "comma-separated tags")
}

func runUpload(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.UploadOptions{
		LocalPath:   args[0],
		Description: uploadDescription,
		Visibility:  uploadVisibility,
		Tags:        uploadTags,
		ContentType: uploadContentType,
		Recursive:   uploadRecursive,
	}

	results, err := client.Upload(context.Background(), opts)
	if err != nil {
		formatter := getFormatter()
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	formatter := getFormatter()
	if err := formatter.FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	for i := range results {
		if results[i].Err != nil {
			return results[i].Err
		}
	}

	return nil
}

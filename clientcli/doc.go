// Package clientcli provides a client library for interacting with picstore servers.
//
// It supports image upload, delete, and list operations over the HTTP API.
// The package includes profile-based configuration for managing connections
// to multiple servers.
//
// # Basic Usage
//
// Create a client and upload an image:
//
//	cfg := &clientcli.Config{
//		Endpoint: "http://localhost:8080",
//		UserID:   "alice",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath:  "./cat.png",
//		Tags:       []string{"pets"},
//		Visibility: "public",
//	})
//
// # Profile Configuration
//
// Use profiles to manage multiple server configurations:
//
//	configFile, err := clientcli.LoadConfigFile("~/.picstore/config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := clientcli.ConfigFromProfile(profile)
//	client, err := clientcli.New(cfg)
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli

// Package config provides configuration management for the S3 utilities.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all settings, divided into subsections:
//   - Storage: S3/MinIO endpoint and credentials
//   - Retry: backoff tuning for storage calls
//   - Scan: concurrency and aggregation tuning
//   - Snapshot: snapshot directory
//   - Report: SMTP delivery settings
//   - Server: snapshot viewer port
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.Endpoint)
package config

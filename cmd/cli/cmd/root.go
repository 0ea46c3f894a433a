// Package cmd provides the CLI commands for serverless-cost-calculator.
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sunxiaoguang/serverless-cost-calculator/internal/config"
	"github.com/sunxiaoguang/serverless-cost-calculator/internal/logging"
)

var (
	connection   config.Source
	region       string
	analyze      bool
	outputFormat string
	batchFile    string
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "serverless-cost-calculator",
	Short: "Estimate the cost of TiDB Serverless for your existing MySQL-compatible databases",
	Long: `serverless-cost-calculator samples operational statistics from a running
MySQL-compatible database (MySQL, MariaDB, or TiDB), normalizes them into an
hourly workload, and estimates the monthly cost of running that workload on
TiDB Serverless in a given region.

Examples:
  serverless-cost-calculator --database shop
  serverless-cost-calculator --host db.internal --user app --password secret --database shop --region eu-central-1
  serverless-cost-calculator --batch clusters.yaml --output json`,
	SilenceUsage: true,
	RunE:         runEstimate,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&connection.Host, "host", "H", envOr("DB_HOST", config.DefaultHost), "host of the MySQL compatible server")
	flags.Uint16VarP(&connection.Port, "port", "P", envOrPort("DB_PORT", config.DefaultPort), "port of the MySQL compatible server")
	flags.StringVarP(&connection.User, "user", "u", envOr("DB_USERNAME", config.DefaultUser), "username for the MySQL compatible server")
	flags.StringVarP(&connection.Password, "password", "p", envOr("DB_PASSWORD", ""), "password for the MySQL compatible server")
	flags.StringVarP(&connection.Database, "database", "D", envOr("DB_DATABASE", ""), "database whose workload is estimated")
	flags.StringVarP(&region, "region", "r", envOr("SERVERLESS_REGION", "us-east-1"), "AWS region of the TiDB Serverless cluster")
	flags.BoolVarP(&analyze, "analyze", "a", os.Getenv("DB_ANALYZE") != "", "run ANALYZE before reading system tables depending on statistics data")
	flags.StringVarP(&outputFormat, "output", "o", envOr("OUTPUT", "human"), "output format, one of: json|yaml|human")
	flags.StringVarP(&batchFile, "batch", "b", "", "batch configuration file listing several databases (json or yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostics")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("serverless-cost-calculator version 0.1.0")
	},
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrPort(key string, fallback uint16) uint16 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	port, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		logging.Warn("ignoring invalid port in environment")
		return fallback
	}
	return uint16(port)
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sepsislab/asewatch/internal/config"
	"github.com/sepsislab/asewatch/internal/exitcode"
)

var (
	cfg     config.Config
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "asewatch",
	Short: "Adult Sepsis Event surveillance over hospital cohort extracts",
	Long: "Reads hospitalization-scoped clinical event tables (Parquet), applies the\n" +
		"CDC Adult Sepsis Event surveillance definition, and writes one determination\n" +
		"per blood culture to a Parquet file and, when a DSN is set, to Postgres.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			return cfg.LoadFromFile(cfgFile)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("ASE_DB_URL"), "Postgres connection string (or set ASE_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfgFile, "config", "", "YAML file of algorithm parameters; its keys override flags")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}

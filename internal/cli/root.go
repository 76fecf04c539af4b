// Package cli реализует командную строку inspector: анализ пары снимков
// до и после аренды без бота и выгрузку отчёта в PDF.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rental-inspector/internal/infrastructure/detector"
)

// Version задаётся при сборке.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd корневая команда
var rootCmd = &cobra.Command{
	Use:   "inspector",
	Short: "Rental car damage inspection",
	Long: `Inspector compares photos of a vehicle taken before and after a rental.

Damage found on both photos is treated as pre-existing; damage that appears
only after the rental is priced from the repair cost table and reported as
chargeable to the renter.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute запускает корневую команду
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd выводит версию
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "inspector %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.inspector/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("detector-url", detector.DefaultBaseURL, "damage detector service URL")
	flags.Duration("detector-timeout", 0, "detector request timeout (0 = none)")
	flags.String("pricing", "", "YAML pricing table (default: reference table)")
	flags.String("currency", "", "currency label for prices")
	flags.Bool("strict-severity", false, "reject detector results with unknown severity labels")

	// Привязка флагов к viper
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("detector_url", flags.Lookup("detector-url"))
	_ = viper.BindPFlag("detector_timeout", flags.Lookup("detector-timeout"))
	_ = viper.BindPFlag("pricing_file", flags.Lookup("pricing"))
	_ = viper.BindPFlag("currency", flags.Lookup("currency"))
	_ = viper.BindPFlag("strict_severity", flags.Lookup("strict-severity"))

	// Подкоманды
	rootCmd.AddCommand(versionCmd, analyzeCmd, renderCmd, pricingCmd)
}

// initConfig читает файл конфигурации и переменные окружения
func initConfig() {
	if cfgFile != "" {
		// Файл конфигурации из флага
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.inspector")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Переменные окружения INSPECTOR_*
	viper.SetEnvPrefix("INSPECTOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

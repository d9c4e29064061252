package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	cobra.OnInitialize(initConfig)
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("COACH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coachctl",
		Short:         "Command line client for the CourseHub writing service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("server", "http://localhost:8000", "server base URL")
	root.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("json", root.PersistentFlags().Lookup("json"))

	root.AddCommand(historyCmd())
	root.AddCommand(feedbackCmd())
	root.AddCommand(usageCmd())
	return root
}

package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "convene",
		Short: "Invitation workflow over a content-addressed shared store",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "convene.yaml", "path to the project config")
	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(createCmd())
	root.AddCommand(pendingCmd())
	root.AddCommand(showCmd())
	root.AddCommand(updateCmd())
	root.AddCommand(acceptCmd())
	root.AddCommand(rejectCmd())
	root.AddCommand(commitCmd())
	root.AddCommand(clearCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

var configPath string

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"convene/internal/agent"
)

func initCmd() *cobra.Command {
	var keyfile string
	cmd := &cobra.Command{
		Use:   "init [project-name]",
		Short: "Generate an agent keypair and a starter config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args[0], keyfile)
		},
	}
	cmd.Flags().StringVar(&keyfile, "keyfile", "agent.key", "where to write the private key")
	return cmd
}

func runInit(cmd *cobra.Command, project, keyfile string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config %s already exists", configPath)
	}

	keys, err := agent.Generate()
	if err != nil {
		return err
	}
	if err := keys.Save(keyfile); err != nil {
		return err
	}

	contents := fmt.Sprintf(`project: %s
version: 1
database:
  dsn: sqlite://convene.db
identity:
  keyfile: %s
notify:
  timeout_seconds: 10
  # webhooks:
  #   "<agent id>": http://peer.example/notify
`, project, keyfile)

	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	cmd.Printf("wrote %s and %s\n", configPath, keyfile)
	cmd.Printf("agent id: %s\n", keys.ID())
	return nil
}

package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/linecrop/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the linecrop configuration file",
		// Loads without validation.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(false)
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := config.ConfigFileName + ".yaml"
			if len(args) == 1 {
				filename = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if err := config.GenerateDefaultConfigFile(filename, force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", filename)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			showSecrets, _ := cmd.Flags().GetBool("show-secrets")
			return config.WriteYAML(cmd.OutOrStdout(), *a.cfg, showSecrets)
		},
	}
	showCmd.Flags().Bool("show-secrets", false, "print passwords in clear text")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in use and the search paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			used := a.loader.GetConfigFileUsed()
			if used == "" {
				used = "(none)"
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Configuration file used: %s\n", used)
			_, _ = fmt.Fprintf(out, "Environment prefix: %s_\n", config.EnvPrefix)
			_, _ = fmt.Fprintln(out, "Search paths:")
			for _, p := range config.GetConfigSearchPaths() {
				_, _ = fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd, pathCmd)
	return configCmd
}

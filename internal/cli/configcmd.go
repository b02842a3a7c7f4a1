package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sshpanes/sshpanes/internal/config"
)

// newConfigCmd groups the configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change connection settings",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigSetPassphraseCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.NewDefaultStore()
			if err != nil {
				return err
			}
			s := store.Get()

			fmt.Printf("Settings file:  %s\n", config.SettingsPath())
			fmt.Printf("Server:         %s\n", orUnset(s.ServerAddress))
			fmt.Printf("Username:       %s\n", orUnset(s.Username))
			fmt.Printf("Base directory: %s\n", orUnset(s.BaseDirectory))
			fmt.Printf("Identity key:   %s\n", orUnset(s.IdentityKeyPath))
			fmt.Printf("Last remote:    %s\n", orUnset(s.LastRemotePath))
			fmt.Printf("Last local:     %s\n", orUnset(s.LastLocalPath))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var serverAddr string
	var user string
	var key string
	var baseDir string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update connection settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverAddr == "" && user == "" && key == "" && baseDir == "" {
				return fmt.Errorf("nothing to set; see 'sshpanes config set --help'")
			}

			store, err := config.NewDefaultStore()
			if err != nil {
				return err
			}
			return store.Update(func(s *config.Settings) {
				if serverAddr != "" {
					s.ServerAddress = serverAddr
				}
				if user != "" {
					s.Username = user
				}
				if key != "" {
					s.IdentityKeyPath = key
				}
				if baseDir != "" {
					s.BaseDirectory = baseDir
				}
			})
		},
	}

	cmd.Flags().StringVar(&serverAddr, "server", "", "Remote server address")
	cmd.Flags().StringVar(&user, "user", "", "Remote username")
	cmd.Flags().StringVar(&key, "key", "", "Identity key path (a .pub path resolves to its private key)")
	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Local base directory")
	return cmd
}

func newConfigSetPassphraseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-passphrase",
		Short: "Store the key passphrase for the configured account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.NewDefaultStore()
			if err != nil {
				return err
			}
			s := store.Get()

			srv := firstNonEmpty(server, s.ServerAddress)
			user := firstNonEmpty(username, s.Username)
			if srv == "" || user == "" {
				return fmt.Errorf("configure a server and username first")
			}

			account := config.Account(user, srv)
			secret, err := readPassphrase(fmt.Sprintf("Passphrase for %s: ", account))
			if err != nil {
				return err
			}

			creds := config.NewDefaultCredentialStore()
			if secret == "" {
				if err := creds.Delete(account); err != nil {
					return err
				}
				fmt.Println("Stored passphrase removed.")
				return nil
			}
			if err := creds.Set(account, secret); err != nil {
				return err
			}
			fmt.Println("Passphrase stored.")
			return nil
		},
	}
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

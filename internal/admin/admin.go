// Package admin implements the securedoc-admin command line: schema
// migrations, user provisioning and category management.
package admin

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/securedoc/internal/server/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

type options struct {
	configPath string
	dsn        string
}

func (o *options) config() (*config.Config, error) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	if o.configPath != "" {
		if err := config.ReadFile(cfg, o.configPath); err != nil {
			return nil, err
		}
	}
	if o.dsn != "" {
		cfg.DatabaseDSN = o.dsn
	}
	// admin commands never touch blobs
	cfg.BlobBackend = config.BlobBackendMemory
	return cfg, nil
}

// NewRootCmd returns the admin command tree. open is called once per command.
func NewRootCmd(open Opener) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "securedoc-admin",
		Short:         "SecureDoc administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (JSON or TOML)")
	rootCmd.PersistentFlags().StringVarP(&opts.dsn, "dsn", "d", "", "PostgreSQL DSN, overrides the config file")

	// withBackend opens a backend for the duration of fn.
	withBackend := func(cmd *cobra.Command, fn func(Backend) error) (err error) {
		cfg, err := opts.config()
		if err != nil {
			return err
		}
		b, err := open(cmd.Context(), cfg, cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("initializing backend: %w", err)
		}
		defer func() {
			err = errors.Join(err, b.Close())
		}()
		return fn(b)
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(b Backend) error {
				if err := b.Migrate(cmd.Context()); err != nil {
					return fmt.Errorf("migrating: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}

	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var staff, setPassword bool
	userAddCmd := &cobra.Command{
		Use:   "add EMAIL",
		Short: "Create a user with a temporary password, or one read from the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if setPassword {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				p, err := readPassword()
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = string(p)
				if password == "" {
					return errors.New("password must not be empty")
				}
			}

			return withBackend(cmd, func(b Backend) error {
				var err error
				if setPassword {
					_, err = b.CreateWithPassword(cmd.Context(), args[0], password, staff)
				} else {
					_, err = b.Provision(cmd.Context(), args[0], staff)
				}
				if err != nil {
					return fmt.Errorf("creating user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %s created\n", strings.ToLower(strings.TrimSpace(args[0])))
				return nil
			})
		},
	}
	userAddCmd.Flags().BoolVar(&staff, "staff", false, "grant staff privileges")
	userAddCmd.Flags().BoolVar(&setPassword, "set-password", false, "prompt for the password instead of generating one")

	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage document categories",
	}

	var description string
	categoryAddCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(b Backend) error {
				c, err := b.CreateCategory(cmd.Context(), args[0], description)
				if err != nil {
					return fmt.Errorf("creating category: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Name)
				return nil
			})
		},
	}
	categoryAddCmd.Flags().StringVar(&description, "description", "", "category description")

	categoryListCmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(b Backend) error {
				cats, err := b.ListCategories(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing categories: %w", err)
				}
				if len(cats) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No categories.")
					return nil
				}
				for _, c := range cats {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c.ID, c.Name, c.Description)
				}
				return nil
			})
		},
	}

	categoryDeleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a category no document references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(b Backend) error {
				if err := b.DeleteCategory(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("deleting category: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "category %s deleted\n", args[0])
				return nil
			})
		},
	}

	userCmd.AddCommand(userAddCmd)
	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd, categoryDeleteCmd)
	rootCmd.AddCommand(migrateCmd, userCmd, categoryCmd)

	return rootCmd
}

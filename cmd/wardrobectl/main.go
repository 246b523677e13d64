package main

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/database/migrations"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/seed"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/server"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/services"
)

var rootCmd = &cobra.Command{
	Use:          "wardrobectl",
	Short:        "Operator tooling for the wardrobe backend",
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQL(func(db *sql.DB) error {
			if err := migrations.MigrateUp(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back applied migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		return withSQL(func(db *sql.DB) error {
			if err := migrations.MigrateDown(db, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s).\n", steps)
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQL(func(db *sql.DB) error {
			st, err := migrations.CheckStatus(db)
			out := cmd.OutOrStdout()
			if errors.Is(err, migrations.ErrNoVersion) {
				fmt.Fprintf(out, "No migrations applied (latest: %d)\n", st.Latest)
				return nil
			}
			if err != nil {
				return err
			}
			state := "up to date"
			switch {
			case st.Dirty:
				state = "dirty"
			case !st.Current():
				state = "pending"
			}
			fmt.Fprintf(out, "Version %d of %d (%s)\n", st.Version, st.Latest, state)
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load item categories and styles",
	Long:  "Loads the built-in taxonomy, or the TOML file given with --file. Existing names are skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		f := seed.Default()
		if path != "" {
			fh, err := os.Open(path)
			if err != nil {
				return err
			}
			defer fh.Close()
			if f, err = seed.Decode(fh); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}

		return withClient(func(cfg *config.Config, db *gorm.DB) error {
			client, err := server.NewClient(cfg, db)
			if err != nil {
				return err
			}
			res, err := seed.Apply(cmd.Context(), services.NewCategoryService(client), services.NewStyleService(client), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a confirmed account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			return errors.New("--email is required")
		}
		password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		return withClient(func(cfg *config.Config, db *gorm.DB) error {
			client, err := server.NewClient(cfg, db)
			if err != nil {
				return err
			}
			user, err := services.NewAdminService(client).CreateUser(cmd.Context(), dto.AdminCreateUserRequest{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Email, user.ID)
			return nil
		})
	},
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func withClient(fn func(*config.Config, *gorm.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(cfg, db)
}

func withSQL(fn func(*sql.DB) error) error {
	return withClient(func(cfg *config.Config, db *gorm.DB) error {
		if cfg.DatabaseDriver != config.DriverPostgres {
			return fmt.Errorf("migrations require the postgres driver, got %q", cfg.DatabaseDriver)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return fn(sqlDB)
	})
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateDownCmd.Flags().IntP("steps", "n", 1, "Number of migrations to roll back")

	usersCmd.AddCommand(usersCreateCmd)
	usersCreateCmd.Flags().StringP("email", "e", "", "Email address of the new account")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringP("file", "f", "", "TOML taxonomy file (defaults to the built-in set)")
	rootCmd.AddCommand(usersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

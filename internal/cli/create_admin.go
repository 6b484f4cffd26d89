package cli

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/tiendatech/storefront/internal/auth"
	"github.com/tiendatech/storefront/internal/config"
	"github.com/tiendatech/storefront/internal/database"
	"github.com/tiendatech/storefront/internal/database/users"
)

type CreateAdminCommand struct {
	Email        string
	Password     string
	Name         string
	DatabasePath string
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Email, "email", "", "Email address for the administrator account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (prompted interactively if omitted)")
	fs.StringVar(&cmd.Name, "name", "Administrator", "Display name for the account")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account in the storefront database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -email admin@example.com\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-admin -email admin@example.com -name \"Jane Doe\" -db ./storefront.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" {
		fs.Usage()
		return fmt.Errorf("email is required")
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	if cmd.Password == "" {
		password, err := promptPassword()
		if err != nil {
			return err
		}
		cmd.Password = password
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	cfg := config.NewConfig()
	service := auth.NewService(users.NewRepository(db.DB), nil, cfg.Auth)

	user, err := service.CreateAdmin(cmd.Email, cmd.Password, cmd.Name)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			return fmt.Errorf("an account with email %s already exists", cmd.Email)
		}
		return err
	}

	fmt.Printf("Created administrator account %s (id=%d)\n", user.Email, user.ID)
	return nil
}

// promptPassword reads the password from the terminal without echoing it,
// asking twice to catch typos.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}

	return string(first), nil
}

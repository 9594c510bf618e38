// Command createadmin creates an active administrator account.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/boonegifts/server/internal/config"
	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/observability"
	"github.com/boonegifts/server/internal/repository"
	"golang.org/x/term"
)

func main() {
	if err := run(context.Background(), os.Stdin, os.Stdout); err != nil {
		observability.GetLogger().WithError(err).Error("createadmin failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, in *os.File, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var db interface{ Close() error }
	var store *repository.Store
	if cfg.UsePostgres() {
		pg, err := repository.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		db, store = pg, repository.NewStore(pg)
	} else {
		lite, err := repository.NewSQLiteDB(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		db, store = lite, repository.NewStore(lite)
	}
	defer db.Close()

	reader := bufio.NewReader(in)
	email, err := prompt(reader, out, "Email: ")
	if err != nil {
		return err
	}
	name, err := prompt(reader, out, "Name: ")
	if err != nil {
		return err
	}
	password, err := readPassword(in, reader, out)
	if err != nil {
		return err
	}

	user, err := createAdmin(ctx, store.Users, email, name, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created admin %s (%s)\n", user.Email, user.ID)
	return nil
}

// userStore is the slice of the user repository createAdmin needs
type userStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Add(ctx context.Context, user *models.User) error
}

func createAdmin(ctx context.Context, users userStore, email, name, password string) (*models.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("name is required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	user, err := models.NewUser(email, name, password, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	existing, err := users.GetByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, models.ErrEmailExists
	}

	if err := users.Add(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func prompt(r *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo on a terminal and falls back to a plain
// line when stdin is piped.
func readPassword(in *os.File, r *bufio.Reader, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return prompt(r, out, "Password: ")
	}

	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprint(out, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

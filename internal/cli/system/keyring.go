package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/pjournal/internal/auth"
	"github.com/julianstephens/pjournal/internal/cli"
	"github.com/julianstephens/pjournal/internal/keyring"
	"github.com/julianstephens/pjournal/internal/storage/postgres"
)

// KeyringSetCmd stores a PostgreSQL connection string in the OS keyring.
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !postgres.IsConnString(cmd.ConnectionString) && !strings.Contains(cmd.ConnectionString, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println("✓ Connection string stored successfully in OS keyring")
	ctx.Println("  You can now use pjournal without the --config flag")
	return nil
}

// KeyringGetCmd prints the stored connection string with its password masked.
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'pjournal keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	ctx.Println("Connection string retrieved from keyring:")
	ctx.Println(maskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringStatusCmd reports keyring availability and which secrets are stored.
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")
	for _, s := range []struct {
		secret keyring.Secret
		label  string
	}{
		{keyring.ConnectionString, "Connection string"},
		{keyring.JWTSecret, "API signing secret"},
	} {
		_, err := keyring.Get(s.secret)
		switch {
		case err == nil:
			ctx.Printf("✓ %s is stored in keyring\n", s.label)
		case errors.Is(err, keyring.ErrNotFound):
			ctx.Printf("ℹ No %s stored in keyring\n", strings.ToLower(s.label))
		default:
			return err
		}
	}
	return nil
}

// KeyringSecretCmd generates a new API signing secret and stores it.
type KeyringSecretCmd struct {
	Force bool `help:"Replace an existing secret. Tokens signed with the old secret stop working."`
}

func (cmd *KeyringSecretCmd) Run(ctx *cli.Context) error {
	if _, err := keyring.Get(keyring.JWTSecret); err == nil && !cmd.Force {
		return errors.New("an API signing secret is already stored; use --force to replace it")
	}
	secret, err := auth.GenerateSecret()
	if err != nil {
		return err
	}
	if err := keyring.Set(keyring.JWTSecret, secret); err != nil {
		return fmt.Errorf("failed to store secret in keyring: %w", err)
	}
	ctx.Println("✓ API signing secret stored in OS keyring")
	return nil
}

// maskPassword hides the password in URL and key=value connection strings.
func maskPassword(connStr string) string {
	if postgres.IsConnString(connStr) {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}

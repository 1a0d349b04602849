package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/pjournal/internal/api"
	"github.com/julianstephens/pjournal/internal/auth"
	"github.com/julianstephens/pjournal/internal/cli"
)

func signer(ctx *cli.Context) (*auth.Signer, error) {
	secret, err := auth.ResolveSecret(ctx.Config.Server.JWTSecret)
	if errors.Is(err, auth.ErrNoSecret) {
		return nil, fmt.Errorf("%w: run 'pjournal keyring secret' or set PJOURNAL_JWT_SECRET", err)
	}
	if err != nil {
		return nil, err
	}
	return auth.NewSigner(secret)
}

// TokenCmd prints a bearer token for the configured owner.
type TokenCmd struct {
	TTL time.Duration `help:"Token lifetime. Defaults to server.token_ttl."`
	For string        `help:"Owner to sign for. Defaults to the configured owner."`
}

func (c *TokenCmd) Run(ctx *cli.Context) error {
	s, err := signer(ctx)
	if err != nil {
		return err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = ctx.Config.Server.TokenTTL
	}
	owner := c.For
	if owner == "" {
		owner = ctx.Journal.Owner()
	}
	tok, err := s.Sign(owner, ttl)
	if err != nil {
		return err
	}
	ctx.Println(tok)
	return nil
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Addr string `help:"Listen address. Defaults to server.addr."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	s, err := signer(ctx)
	if err != nil {
		return err
	}
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.Server.Addr
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Printf("Serving pjournal API on %s\n", addr)
	return api.Serve(sigCtx, addr, api.NewRouter(ctx.Journal, s))
}

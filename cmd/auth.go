package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/desertthunder/mprisd/internal/server"
	"github.com/desertthunder/mprisd/internal/services"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/urfave/cli/v3"
)

const authTimeout = 2 * time.Minute

// Auth performs the OAuth2 authorization code flow for the Spotify Web API source.
//
// Starts a local callback server, opens the browser, and saves the issued tokens to the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if err := creds.Validate(); err != nil {
		return err
	}

	svc, err := services.NewSpotifyWebService(creds, r.logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", r.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}

	state := shared.GenerateID()
	authURL := svc.AuthURL(state)
	handler := server.NewOAuthHandler(svc, state)

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("failed to open browser automatically", "error", err)
			r.writePlain("⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n\n", authURL)
		}
	}

	timeout := cmd.Duration("timeout")
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	tok, err := server.AwaitToken(ctx, ln, handler, timeout, r.logger)
	if err != nil {
		return err
	}

	if err := r.saveTokens(tok); err != nil {
		return err
	}

	r.writePlain("✓ Authorization successful\n")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("Set source = \"web\" under [bridge] to use the Web API source.\n")
	return nil
}

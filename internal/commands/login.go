package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/lifecycle"
	"taskflow/internal/service"
)

const (
	// OAuth callback timeout
	oauthCallbackTimeout = 5 * time.Minute

	// Starting port for OAuth callback server
	oauthStartPort = 8085

	// Max port attempts
	oauthMaxPortAttempts = 5
)

func init() {
	Register(&LoginCmd{})
}

// authCodeSource is implemented by gateways that log in through a browser
// authorization code instead of a password.
type authCodeSource interface {
	AuthCodeURL(redirectURL, verifier string) string
}

// LoginCmd implements the login command.
type LoginCmd struct {
	base
	email    string
	password string
}

// SetCredentials sets the email and password (for testing).
func (c *LoginCmd) SetCredentials(email, password string) {
	c.email, c.password = email, password
}

func (c *LoginCmd) Name() string     { return "login" }
func (c *LoginCmd) Synopsis() string { return "Log in" }
func (c *LoginCmd) Usage() string    { return "taskflow login [--email <email> --password <password>]" }
func (c *LoginCmd) NeedsAuth() bool  { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}

	// A stored session that the gateway still accepts needs no new login.
	// One it rejects has been cleared by the controller.
	if ctl.State() == lifecycle.Authenticated {
		_, err := ctl.RestoreSession(ctx)
		if err == nil {
			if !cfg.Quiet {
				fmt.Fprintln(out, "already logged in")
			}
			return exitcode.Success
		}
		if !service.IsUnauthorized(err) {
			return report(errOut, err, "request failed")
		}
	}

	creds := service.Credentials{Email: c.email, Password: c.password}
	if src, ok := ctl.Gateway().(authCodeSource); ok {
		var code int
		creds, code = browserCredentials(ctx, src, errOut)
		if code != exitcode.Success {
			return code
		}
	}

	if _, err := ctl.SubmitCredentials(ctx, creds); err != nil {
		return report(errOut, err, "login failed")
	}
	return acknowledge(out, cfg.Quiet)
}

// browserCredentials runs the authorization code flow: it prints the
// consent URL, waits for the redirect on a local port and returns the code
// together with its PKCE verifier.
func browserCredentials(ctx context.Context, src authCodeSource, errOut io.Writer) (service.Credentials, int) {
	port, listener, err := findAvailablePort()
	if err != nil {
		fmt.Fprintln(errOut, "error: could not bind to local port for OAuth callback")
		return service.Credentials{}, exitcode.AuthError
	}
	defer listener.Close()

	redirectURL := fmt.Sprintf("http://localhost:%d/callback", port)
	verifier := oauth2.GenerateVerifier()

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, src.AuthCodeURL(redirectURL, verifier))

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("no code in callback"):
			default:
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	select {
	case code := <-codeCh:
		return service.Credentials{AuthCode: code, CodeVerifier: verifier, RedirectURL: redirectURL}, exitcode.Success
	case err := <-errCh:
		fmt.Fprintf(errOut, "error: %v\n", err)
	case <-time.After(oauthCallbackTimeout):
		fmt.Fprintln(errOut, "error: oauth callback timed out")
	case <-ctx.Done():
		fmt.Fprintln(errOut, "error: cancelled")
	}
	return service.Credentials{}, exitcode.AuthError
}

// findAvailablePort tries to find an available port starting from oauthStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port found")
}

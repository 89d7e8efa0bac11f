package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

// CodePrompter supplies the provider's authorization code during the
// interactive flow. Abstracting the prompt keeps the flow testable without
// a real console.
type CodePrompter interface {
	// Prompt displays the authorization URL to the operator and returns
	// the code they obtained by visiting it.
	Prompt(authURL string) (string, error)
}

// ConsolePrompter prompts on the terminal and blocks on a single line of
// input containing the authorization code.
type ConsolePrompter struct {
	// In is the input stream, typically os.Stdin.
	In io.Reader

	// Out is the output stream, typically os.Stdout.
	Out io.Writer
}

// NewConsolePrompter creates a ConsolePrompter bound to stdin/stdout.
func NewConsolePrompter() *ConsolePrompter {
	return &ConsolePrompter{In: os.Stdin, Out: os.Stdout}
}

// Prompt implements CodePrompter.
func (p *ConsolePrompter) Prompt(authURL string) (string, error) {
	fmt.Fprintf(p.Out, "Open the following link in your browser, authorize the application,\n")
	fmt.Fprintf(p.Out, "and paste the authorization code below.\n\n%s\n\n", authURL)
	fmt.Fprintf(p.Out, "Authorization code: ")

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// Flow acquires the OAuth token for one run: the cached token when the
// token store holds one, otherwise a single interactive authorization.
// Once a token is obtained the flow never re-prompts within the run.
type Flow struct {
	config    *oauth2.Config
	tokenPath string
	prompter  CodePrompter
	logger    *slog.Logger

	mu  sync.Mutex
	tok *oauth2.Token
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithPrompter sets the authorization-code prompter. Default is a
// ConsolePrompter on stdin/stdout.
func WithPrompter(p CodePrompter) FlowOption {
	return func(f *Flow) {
		f.prompter = p
	}
}

// WithLogger sets a custom logger for the flow.
func WithLogger(logger *slog.Logger) FlowOption {
	return func(f *Flow) {
		f.logger = logger
	}
}

// NewFlow creates a Flow for the given client config and token store path.
func NewFlow(config *oauth2.Config, tokenPath string, opts ...FlowOption) *Flow {
	f := &Flow{
		config:    config,
		tokenPath: tokenPath,
		prompter:  NewConsolePrompter(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Token returns the credential for this run, acquiring it on first call.
func (f *Flow) Token(ctx context.Context) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.tok != nil {
		return f.tok, nil
	}

	tok, err := tokenFromFile(f.tokenPath)
	if err == nil {
		f.logger.Debug("using cached token", "path", f.tokenPath)
		f.tok = tok
		return tok, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		f.logger.Warn("token cache unreadable, starting interactive authorization",
			"path", f.tokenPath, "error", err)
	}

	tok, err = f.authorize(ctx)
	if err != nil {
		return nil, err
	}

	// Best effort: the freshly obtained in-memory credential still serves
	// this run even when the cache write fails.
	if err := saveToken(f.tokenPath, tok); err != nil {
		f.logger.Warn("failed to persist token, continuing with in-memory credential",
			"path", f.tokenPath, "error", err)
	}

	f.tok = tok
	return tok, nil
}

// TokenSource returns an auto-refreshing token source backed by the
// acquired credential.
func (f *Flow) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := f.Token(ctx)
	if err != nil {
		return nil, err
	}
	return f.config.TokenSource(ctx, tok), nil
}

// authorize runs the interactive flow: display the authorization URL, read
// the code, exchange it for a token. The exchange is attempted once; a
// rejected code aborts without re-prompting.
func (f *Flow) authorize(ctx context.Context) (*oauth2.Token, error) {
	authURL := f.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	code, err := f.prompter.Prompt(authURL)
	if err != nil {
		return nil, fmt.Errorf("authorization prompt failed: %w", err)
	}
	if code == "" {
		return nil, ErrEmptyAuthCode
	}

	tok, err := f.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return tok, nil
}

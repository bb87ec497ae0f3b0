package auth

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoPassword is returned when no password source yields a value.
var ErrNoPassword = errors.New("no password available")

// PasswordSource lists the places a client password may come from, in
// order of preference.
type PasswordSource struct {
	Value  string // explicit value, e.g. from a flag
	EnvKey string // environment variable name
	Path   string // file holding the password
	Prompt bool   // ask on the terminal as a last resort
}

// ResolvePassword returns the first password found in src.
func ResolvePassword(src PasswordSource) (string, error) {
	if src.Value != "" {
		return src.Value, nil
	}
	if src.EnvKey != "" {
		if v := os.Getenv(src.EnvKey); v != "" {
			return v, nil
		}
	}
	if src.Path != "" {
		return LoadPassword(src.Path)
	}
	if src.Prompt {
		return PromptPassword(os.Stdin, os.Stderr, "replay password: ")
	}
	return "", ErrNoPassword
}

// LoadPassword reads a password file. Trailing newlines are removed.
func LoadPassword(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read password file: %w", err)
	}
	pw := strings.TrimRight(string(data), "\r\n")
	if pw == "" {
		return "", fmt.Errorf("password file %s: %w", path, ErrNoPassword)
	}
	return pw, nil
}

// PromptPassword reads a password from the terminal on in without echo.
func PromptPassword(in *os.File, out io.Writer, prompt string) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal: %w", ErrNoPassword)
	}
	fmt.Fprint(out, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(pw) == 0 {
		return "", ErrNoPassword
	}
	return string(pw), nil
}

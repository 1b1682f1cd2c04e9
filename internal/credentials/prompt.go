package credentials

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// PromptCredentials interactively collects credentials from the terminal.
// The password is read without echo.
func PromptCredentials() (*Credentials, error) {
	reader := bufio.NewReader(os.Stdin)

	user, err := promptLine(reader, "User: ")
	if err != nil {
		return nil, err
	}
	host, err := promptLine(reader, "Host: ")
	if err != nil {
		return nil, err
	}
	portText, err := promptLine(reader, "Port: ")
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portText, err)
	}
	password, err := PromptSecret("Password: ")
	if err != nil {
		return nil, err
	}

	return &Credentials{User: user, Password: password, Host: host, Port: port}, nil
}

// PromptPassphrase reads the passphrase protecting the credentials file.
// With confirm set, it asks twice and requires both entries to match.
func PromptPassphrase(confirm bool) (string, error) {
	passphrase, err := PromptSecret("Passphrase: ")
	if err != nil {
		return "", err
	}
	if confirm {
		again, err := PromptSecret("Confirm passphrase: ")
		if err != nil {
			return "", err
		}
		if passphrase != again {
			return "", fmt.Errorf("passphrases do not match")
		}
	}
	return passphrase, nil
}

// PromptSecret reads a line from the terminal without echoing it.
func PromptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return string(secret), nil
}

func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

package tunnel

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"
)

// ErrNoTerminal is returned when a password or key passphrase is needed
// but the gateway was configured without a [Prompter].
var ErrNoTerminal = errors.New("no terminal to prompt on")

// Prompter reads a secret for label, without echo.
type Prompter func(label string) ([]byte, error)

// TerminalPrompter prompts on out and reads from in.  It returns nil
// when in is not a terminal, so a piped or daemonized shell never blocks
// on a prompt nobody can answer.
func TerminalPrompter(in *os.File, out io.Writer) Prompter {
	if in == nil || !term.IsTerminal(int(in.Fd())) {
		return nil
	}
	return func(label string) ([]byte, error) {
		fmt.Fprintf(out, "%s: ", label)
		secret, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		return secret, err
	}
}

// defaultKeyFiles are tried under ~/.ssh when nothing is configured.
var defaultKeyFiles = []string{"id_ed25519", "id_rsa", "id_ecdsa"}

// BuildAuthMethods assembles the gateway authentication methods in the
// order explicit key, agent, password.  With none configured it falls
// back to the agent plus the usual key files under ~/.ssh.
func BuildAuthMethods(cfg *SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyPath != "" {
		signer, err := loadSigner(cfg.KeyPath, cfg.Prompt)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", cfg.KeyPath, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if cfg.UseAgent {
		m, err := agentAuth()
		if err != nil {
			return nil, fmt.Errorf("ssh-agent: %w", err)
		}
		methods = append(methods, m)
	}

	if cfg.PromptPass {
		if cfg.Prompt == nil {
			return nil, fmt.Errorf("password for %s@%s: %w", cfg.LoginUser(), cfg.Host, ErrNoTerminal)
		}
		// Asked during the handshake, and only if the server gets that far.
		label := fmt.Sprintf("%s@%s's password", cfg.LoginUser(), cfg.Host)
		methods = append(methods, ssh.PasswordCallback(func() (string, error) {
			pass, err := cfg.Prompt(label)
			if err != nil {
				return "", fmt.Errorf("reading password: %w", err)
			}
			return string(pass), nil
		}))
	}

	if len(methods) == 0 {
		methods = fallbackAuthMethods(cfg.Prompt)
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("no SSH authentication methods available for gateway %s; "+
			"use --ssh-key, --ssh-password or --ssh-agent", cfg.Addr())
	}
	return methods, nil
}

// loadSigner parses the private key at path.  An encrypted key needs
// prompt for its passphrase.
func loadSigner(path string, prompt Prompter) (ssh.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	var missing *ssh.PassphraseMissingError
	switch {
	case err == nil:
		return signer, nil
	case !errors.As(err, &missing):
		return nil, fmt.Errorf("parsing key: %w", err)
	case prompt == nil:
		return nil, fmt.Errorf("encrypted key needs a passphrase: %w", ErrNoTerminal)
	}

	pass, err := prompt("Enter passphrase for " + path)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	signer, err = ssh.ParsePrivateKeyWithPassphrase(data, pass)
	if err != nil {
		return nil, fmt.Errorf("decrypting key: %w", err)
	}
	return signer, nil
}

func agentAuth() (ssh.AuthMethod, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, errors.New("SSH_AUTH_SOCK is not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("connecting to agent at %s: %w", sock, err)
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), nil
}

// fallbackAuthMethods offers the agent and every readable default key in
// one publickey method.  Keys that fail to load are skipped, encrypted
// ones included when prompt is nil.
func fallbackAuthMethods(prompt Prompter) []ssh.AuthMethod {
	var out []ssh.AuthMethod
	if m, err := agentAuth(); err == nil {
		out = append(out, m)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return out
	}
	var signers []ssh.Signer
	for _, name := range defaultKeyFiles {
		p := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if s, err := loadSigner(p, prompt); err == nil {
			signers = append(signers, s)
		}
	}
	if len(signers) > 0 {
		out = append(out, ssh.PublicKeys(signers...))
	}
	return out
}

// ── host keys ────────────────────────────────────────────────────────

func hostKeyCallback(cfg *SSHConfig) (ssh.HostKeyCallback, error) {
	if !cfg.StrictHostKey {
		//nolint:gosec // host key checking is opt-in via --strict-hostkey
		return ssh.InsecureIgnoreHostKey(), nil
	}
	file, err := cfg.knownHostsFile()
	if err != nil {
		return nil, err
	}
	cb, err := knownhosts.New(file)
	if err != nil {
		return nil, fmt.Errorf("loading known_hosts from %s: %w", file, err)
	}
	return cb, nil
}

func (c *SSHConfig) knownHostsFile() (string, error) {
	if c.KnownHosts != "" {
		return c.KnownHosts, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".ssh", "known_hosts"), nil
}

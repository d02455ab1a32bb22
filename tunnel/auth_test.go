package tunnel

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestBuildAuthMethods_ExplicitKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_test")
	writeTestKey(t, keyPath)

	methods, err := BuildAuthMethods(&SSHConfig{KeyPath: keyPath})
	if err != nil {
		t.Fatalf("BuildAuthMethods: %v", err)
	}
	if len(methods) != 1 {
		t.Fatalf("got %d methods, want 1", len(methods))
	}
}

func TestBuildAuthMethods_MissingKey(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")

	_, err := BuildAuthMethods(&SSHConfig{KeyPath: "/nonexistent/key"})
	if err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestBuildAuthMethods_AgentWithoutSocket(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")

	if _, err := BuildAuthMethods(&SSHConfig{UseAgent: true}); err == nil {
		t.Fatal("expected error when SSH_AUTH_SOCK is unset")
	}
}

func TestBuildAuthMethods_PasswordWithoutTerminal(t *testing.T) {
	_, err := BuildAuthMethods(&SSHConfig{User: "ops", Host: "edge", PromptPass: true})
	if !errors.Is(err, ErrNoTerminal) {
		t.Fatalf("got %v, want ErrNoTerminal", err)
	}
}

func TestBuildAuthMethods_PasswordPromptDeferred(t *testing.T) {
	var labels []string
	prompt := func(label string) ([]byte, error) {
		labels = append(labels, label)
		return []byte("secret"), nil
	}
	methods, err := BuildAuthMethods(&SSHConfig{User: "ops", Host: "edge", PromptPass: true, Prompt: prompt})
	if err != nil {
		t.Fatal(err)
	}
	if len(methods) != 1 {
		t.Fatalf("got %d methods, want 1", len(methods))
	}
	if len(labels) != 0 {
		t.Errorf("prompted before the handshake: %q", labels)
	}
}

func TestBuildAuthMethods_EncryptedKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_locked")
	writeEncryptedTestKey(t, keyPath, "hunter2")

	_, err := BuildAuthMethods(&SSHConfig{KeyPath: keyPath})
	if !errors.Is(err, ErrNoTerminal) {
		t.Fatalf("without a prompter: %v, want ErrNoTerminal", err)
	}

	var asked string
	prompt := func(label string) ([]byte, error) {
		asked = label
		return []byte("hunter2"), nil
	}
	methods, err := BuildAuthMethods(&SSHConfig{KeyPath: keyPath, Prompt: prompt})
	if err != nil {
		t.Fatalf("with a prompter: %v", err)
	}
	if len(methods) != 1 || asked != "Enter passphrase for "+keyPath {
		t.Errorf("methods %d, prompt %q", len(methods), asked)
	}

	wrong := func(string) ([]byte, error) { return []byte("nope"), nil }
	if _, err := BuildAuthMethods(&SSHConfig{KeyPath: keyPath, Prompt: wrong}); err == nil {
		t.Error("expected a wrong passphrase to fail")
	}
}

func TestBuildAuthMethods_FallbackSkipsEncryptedKeys(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SSH_AUTH_SOCK", "")
	dir := filepath.Join(home, ".ssh")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}

	writeEncryptedTestKey(t, filepath.Join(dir, "id_rsa"), "hunter2")
	if _, err := BuildAuthMethods(&SSHConfig{Host: "edge", Port: 22}); err == nil {
		t.Fatal("an encrypted default key alone must not yield a method without a prompter")
	}

	writeTestKey(t, filepath.Join(dir, "id_ed25519"))
	methods, err := BuildAuthMethods(&SSHConfig{Host: "edge", Port: 22})
	if err != nil {
		t.Fatal(err)
	}
	if len(methods) != 1 {
		t.Errorf("got %d methods, want one publickey method", len(methods))
	}
}

func TestSSHConfig_LoginUser(t *testing.T) {
	t.Setenv("USER", "carol")
	if got := (&SSHConfig{User: "ops"}).LoginUser(); got != "ops" {
		t.Errorf("LoginUser = %q", got)
	}
	if got := (&SSHConfig{}).LoginUser(); got != "carol" {
		t.Errorf("LoginUser without a user = %q, want $USER", got)
	}
}

func TestTerminalPrompter_NotATerminal(t *testing.T) {
	f, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if TerminalPrompter(f, os.Stderr) != nil {
		t.Error("a non-terminal input must not get a prompter")
	}
	if TerminalPrompter(nil, os.Stderr) != nil {
		t.Error("nil input must not get a prompter")
	}
}

func TestHostKeyCallback_Insecure(t *testing.T) {
	cb, err := hostKeyCallback(&SSHConfig{StrictHostKey: false})
	if err != nil {
		t.Fatal(err)
	}
	if cb == nil {
		t.Fatal("callback should not be nil")
	}
}

func TestHostKeyCallback_StrictMissingFile(t *testing.T) {
	cfg := &SSHConfig{StrictHostKey: true, KnownHosts: filepath.Join(t.TempDir(), "absent")}
	if _, err := hostKeyCallback(cfg); err == nil {
		t.Fatal("expected error for a missing known_hosts file")
	}
}

// ── helpers ──────────────────────────────────────────────────────────

// writeTestKey writes a freshly generated, unencrypted ed25519 key.
func writeTestKey(t *testing.T, path string) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "test@hdfs-shell")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
}

func writeEncryptedTestKey(t *testing.T, path, passphrase string) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	block, err := ssh.MarshalPrivateKeyWithPassphrase(priv, "test@hdfs-shell", []byte(passphrase))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
}

package transport

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHTransport implements Transport with an authenticated golang.org/x/crypto/ssh
// session for Exec, and a raw ssh/scp subprocess for PushFile — scp handles
// large change-set uploads more efficiently than chunking them over an SFTP
// session ourselves.
type SSHTransport struct {
	host    string
	port    int
	user    string
	keyPath string // non-empty: key auth; empty: password auth
	client  *ssh.Client
}

// Dial opens an authenticated SSH connection to host:port. Exactly one of
// password or keyPath should be set.
func Dial(host string, port int, user, password, keyPath string) (*SSHTransport, error) {
	auth, err := authMethod(password, keyPath)
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}

	return &SSHTransport{host: host, port: port, user: user, keyPath: keyPath, client: client}, nil
}

func authMethod(password, keyPath string) (ssh.AuthMethod, error) {
	if keyPath != "" {
		key, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("transport: read key %s: %w", keyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("transport: parse key %s: %w", keyPath, err)
		}
		return ssh.PublicKeys(signer), nil
	}
	return ssh.Password(password), nil
}

// Exec runs command on the worker and returns its combined output.
func (t *SSHTransport) Exec(ctx context.Context, command string) (string, error) {
	session, err := t.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("transport: new session to %s: %w", t.host, err)
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(command)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("transport: exec on %s cancelled: %w", t.host, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return string(r.out), fmt.Errorf("transport: exec on %s: %w", t.host, r.err)
		}
		return string(r.out), nil
	}
}

// PushFile uploads content to remotePath via scp.
func (t *SSHTransport) PushFile(ctx context.Context, remotePath string, content []byte) error {
	tmp, err := os.CreateTemp("", "starmesh-push-*")
	if err != nil {
		return fmt.Errorf("transport: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("transport: write temp file: %w", err)
	}
	tmp.Close()

	args := []string{
		"-o", "StrictHostKeyChecking=no",
		"-o", "ConnectTimeout=10",
		"-P", fmt.Sprintf("%d", t.port),
	}
	if t.keyPath != "" {
		args = append(args, "-i", t.keyPath)
	}
	args = append(args, tmp.Name(), fmt.Sprintf("%s@%s:%s", t.user, t.host, remotePath))

	cmd := exec.CommandContext(ctx, "scp", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("transport: scp to %s:%s: %w\n%s", t.host, remotePath, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Close releases the underlying SSH connection.
func (t *SSHTransport) Close() error {
	return t.client.Close()
}

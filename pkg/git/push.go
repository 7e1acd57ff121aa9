package git

import (
	"fmt"
	"os"
	"path/filepath"
)

// PushOptions selects the credentials attempted for a push.
type PushOptions struct {
	// SSHKey is a private key tried first. Empty means "use the conventional
	// key if one exists".
	SSHKey string
	// UseCredentialHelper allows a plain push that lets git consult the
	// host-configured credential helper when the key attempt fails.
	UseCredentialHelper bool
}

// Push sends the current branch to its remote, trying an SSH key first and
// the host credential helper second. The caller treats any returned error as
// best-effort: the local commit is authoritative regardless.
func (c *Client) Push(opts PushOptions) error {
	args, err := c.pushArgs()
	if err != nil {
		return err
	}

	key := opts.SSHKey
	if key == "" {
		key = conventionalSSHKey()
	}

	var keyErr error
	if key != "" {
		sshCommand := fmt.Sprintf("ssh -i %s -o IdentitiesOnly=yes", key)
		if _, _, err := c.run(map[string]string{"GIT_SSH_COMMAND": sshCommand}, args...); err == nil {
			return nil
		} else {
			keyErr = err
		}
	}

	if opts.UseCredentialHelper || key == "" {
		if _, err := c.Run(args...); err == nil {
			return nil
		} else if keyErr == nil {
			keyErr = err
		}
	}

	if keyErr == nil {
		keyErr = fmt.Errorf("no push credential available")
	}
	return fmt.Errorf("push failed: %w", keyErr)
}

// pushArgs pushes to the configured upstream when one exists, otherwise to
// origin with the current branch name.
func (c *Client) pushArgs() ([]string, error) {
	if c.HasUpstream() {
		return []string{"push"}, nil
	}
	branch, err := c.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current branch: %w", err)
	}
	return []string{"push", "origin", branch}, nil
}

// conventionalSSHKey returns ~/.ssh/id_ed25519 when it exists, else "".
func conventionalSSHKey() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	key := filepath.Join(home, ".ssh", "id_ed25519")
	if _, err := os.Stat(key); err != nil {
		return ""
	}
	return key
}

// Package gitcli implements the adapters.Git contract by shelling out to
// the git binary. Calling the CLI rather than a Go git library keeps the
// tool compatible with the user's git configuration: SSH keys, credential
// helpers and submodule settings all apply unchanged.
package gitcli

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tinuva/kodi-repo/internal/adapters"
	"github.com/tinuva/kodi-repo/internal/changelog"
)

var _ adapters.Git = (*Client)(nil)

// messageSeparator terminates each commit message in git-log output so
// multi-paragraph messages split unambiguously.
const messageSeparator = "\x1e"

// Client shells out to git for every operation.
type Client struct {
	// GitPath overrides the binary looked up on PATH.
	GitPath string
}

func New() *Client {
	return &Client{}
}

func (c *Client) run(ctx context.Context, workdir string, args ...string) (string, error) {
	bin := c.GitPath
	if bin == "" {
		bin = "git"
	}

	cmd := exec.CommandContext(ctx, bin, append([]string{"-C", workdir}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *Client) Revert(ctx context.Context, workdir string) error {
	if _, err := c.run(ctx, workdir, "clean", "-f"); err != nil {
		return err
	}
	_, err := c.run(ctx, workdir, "checkout", ".")
	return err
}

func (c *Client) HardReset(ctx context.Context, workdir string) error {
	_, err := c.run(ctx, workdir, "reset", "--hard")
	return err
}

func (c *Client) CurrentCommit(ctx context.Context, workdir string) (string, error) {
	return c.run(ctx, workdir, "rev-parse", "HEAD")
}

func (c *Client) FetchAndMerge(ctx context.Context, workdir, branch string) error {
	if _, err := c.run(ctx, workdir, "fetch", "origin", branch); err != nil {
		return err
	}
	_, err := c.run(ctx, workdir, "merge", "origin/"+branch)
	return err
}

func (c *Client) Checkout(ctx context.Context, workdir, ref string) error {
	_, err := c.run(ctx, workdir, "checkout", ref)
	return err
}

func (c *Client) LogMessages(ctx context.Context, workdir, rangeSpec string, limit int) ([]string, error) {
	args := logArgs(rangeSpec, limit)
	out, err := c.run(ctx, workdir, args...)
	if err != nil {
		return nil, err
	}
	return splitMessages(out), nil
}

func (c *Client) InitSubtree(ctx context.Context, workdir, path string, recursive bool) error {
	args := []string{"submodule", "update", "--init"}
	if recursive {
		args = append(args, "--recursive")
	}
	if path != "" {
		args = append(args, path)
	}
	_, err := c.run(ctx, workdir, args...)
	return err
}

func (c *Client) UpdateSubtree(ctx context.Context, workdir, path string) error {
	args := []string{"submodule", "update"}
	if path != "" {
		args = append(args, path)
	}
	_, err := c.run(ctx, workdir, args...)
	return err
}

func (c *Client) Commit(ctx context.Context, workdir, message string) error {
	_, err := c.run(ctx, workdir, "commit", "-m", message)
	return err
}

func (c *Client) Push(ctx context.Context, workdir, remote string, force bool) error {
	args := []string{"push", remote}
	if force {
		args = append(args, "-f")
	}
	_, err := c.run(ctx, workdir, args...)
	return err
}

// logArgs builds the git-log invocation for a commit range. The
// all-history sentinel omits the range argument so the log covers every
// commit reachable from the current reference.
func logArgs(rangeSpec string, limit int) []string {
	args := []string{"log", "-n", strconv.Itoa(limit), "--pretty=format:%B" + messageSeparator}
	if rangeSpec != changelog.AllHistory {
		args = append(args, rangeSpec)
	}
	return args
}

func splitMessages(out string) []string {
	var messages []string
	for _, chunk := range strings.Split(out, messageSeparator) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		messages = append(messages, chunk)
	}
	return messages
}

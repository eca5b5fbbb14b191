package git

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Metadata describes the repository a scan root belongs to.
type Metadata struct {
	RootFolder    string
	Branch        string // empty on a detached HEAD
	Commit        string // empty before the first commit
	RepositoryURL string // origin remote without credentials or .git suffix
}

// CollectMetadata reads branch, commit and origin of the repository containing root.
func CollectMetadata(root string) (*Metadata, error) {
	start, err := startFolder(root)
	if err != nil {
		return nil, err
	}
	repoRoot, err := findGitRepositoryPath(start)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpen(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	md := &Metadata{RootFolder: repoRoot}
	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			md.Branch = head.Name().Short()
		}
		md.Commit = head.Hash().String()
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			md.RepositoryURL = strings.TrimSuffix(redact(cfg.URLs[0]), ".git")
		}
	}
	return md, nil
}

// redact drops user info from URL style remotes. scp style remotes are kept as they are.
func redact(remote string) string {
	u, err := url.Parse(remote)
	if err != nil || u.Scheme == "" || u.User == nil {
		return remote
	}
	u.User = nil
	return u.String()
}

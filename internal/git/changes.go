package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/scan-io-git/a11yscan/pkg/shared/files"
)

// ChangedFiles lists the files under root that differ from the last commit: modified,
// staged, and untracked files that are not ignored. When base is set, files changed on the
// current branch since it forked from base are included as well. Deleted files are left out.
// Paths are absolute and sorted.
func ChangedFiles(root, base string) ([]string, error) {
	start, err := startFolder(root)
	if err != nil {
		return nil, err
	}
	repoRoot, err := findGitRepositoryPath(start)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", root, err)
	}
	repo, err := git.PlainOpen(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	changed, err := worktreeChanges(repo)
	if err != nil {
		return nil, err
	}
	if base != "" {
		committed, err := committedChanges(repo, base)
		if err != nil {
			return nil, err
		}
		changed = append(changed, committed...)
	}

	seen := make(map[string]bool, len(changed))
	var out []string
	for _, rel := range changed {
		abs := filepath.Join(repoRoot, filepath.FromSlash(rel))
		if seen[abs] {
			continue
		}
		seen[abs] = true
		if _, err := files.EnsureWithinRoot(start, abs); err != nil {
			continue
		}
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			continue
		}
		out = append(out, abs)
	}
	sort.Strings(out)
	return out, nil
}

// worktreeChanges returns the slash separated paths reported by git status.
func worktreeChanges(repo *git.Repository) ([]string, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	var out []string
	for path, st := range status {
		if st.Staging == git.Unmodified && st.Worktree == git.Unmodified {
			continue
		}
		if st.Worktree == git.Deleted || (st.Staging == git.Deleted && st.Worktree != git.Untracked) {
			continue
		}
		out = append(out, path)
	}
	return out, nil
}

// committedChanges returns the paths touched between the merge base of HEAD and base, and HEAD.
func committedChanges(repo *git.Repository, base string) ([]string, error) {
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoHead
		}
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD commit: %w", err)
	}
	baseCommit, err := resolveBase(repo, base)
	if err != nil {
		return nil, err
	}
	if bases, err := baseCommit.MergeBase(headCommit); err == nil && len(bases) > 0 {
		baseCommit = bases[0]
	}

	baseTree, err := baseCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load base tree: %w", err)
	}
	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD tree: %w", err)
	}
	changes, err := object.DiffTree(baseTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s..HEAD: %w", base, err)
	}

	var out []string
	for _, c := range changes {
		if c.To.Name != "" {
			out = append(out, c.To.Name)
		}
	}
	return out, nil
}

// resolveBase accepts a branch name, a full reference or any revision git understands.
func resolveBase(repo *git.Repository, base string) (*object.Commit, error) {
	if ref, err := repo.Reference(determineBranch(base), true); err == nil {
		return repo.CommitObject(ref.Hash())
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(base))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownBase, base, err)
	}
	return repo.CommitObject(*hash)
}

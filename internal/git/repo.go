package git

import (
	"errors"

	"github.com/go-git/go-git/v5"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
)

// Repo is an opened work tree.
type Repo struct {
	repo *git.Repository
	root string
}

// OpenWorkTree opens the repository containing path, searching parent
// directories for .git. A bare repository or a path outside any repository
// is an error.
func OpenWorkTree(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		msg := "failed to open repository"
		if errors.Is(err, git.ErrRepositoryNotExists) {
			msg = "not inside a git work tree"
		}
		return nil, GitError(msg).
			WithCause(err).
			WithContext("path", path).
			UserAction().
			Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, GitError("repository has no work tree").
			WithCause(err).
			WithContext("path", path).
			UserAction().
			Build()
	}
	return &Repo{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root is the top-level directory of the work tree.
func (r *Repo) Root() string { return r.root }

// Head returns the commit hash HEAD points at.
func (r *Repo) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", GitError("failed to resolve HEAD").
			WithCause(err).
			WithContext("path", r.root).
			Build()
	}
	return ref.Hash().String(), nil
}

// Branch returns the short name of the checked-out branch, or "" when HEAD is detached.
func (r *Repo) Branch() string {
	ref, err := r.repo.Head()
	if err != nil || !ref.Name().IsBranch() {
		return ""
	}
	return ref.Name().Short()
}

// GitError simplifies creating a git-scoped ClassifiedError.
func GitError(message string) *ferrors.ErrorBuilder {
	return ferrors.NewError(ferrors.CategoryGit, message)
}

package loader

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/filesystem"
)

var ErrNoRepository = errors.New("loader: not inside a git repository")

const gitDir = ".git"

// parseGitRef splits "git:<rev>:<path>". The path is relative to the
// repository root.
func parseGitRef(ref string) (rev, file string, err error) {
	rest := strings.TrimPrefix(ref, gitPrefix)
	rev, file, ok := strings.Cut(rest, ":")
	if !ok || rev == "" || file == "" {
		return "", "", fmt.Errorf("loader: invalid git reference %q, want git:<rev>:<path>", ref)
	}
	return rev, path.Clean(strings.TrimPrefix(filepath.ToSlash(file), "/")), nil
}

func (l *Loader) loadGit(ref string) (Script, error) {
	rev, file, err := parseGitRef(ref)
	if err != nil {
		return Script{}, err
	}

	if l.repo == nil {
		repo, err := l.openRepo()
		if err != nil {
			return Script{}, err
		}
		l.repo = repo
	}

	hash, err := l.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return Script{}, fmt.Errorf("%w: revision %s: %v", ErrNotFound, rev, err)
	}
	commit, err := l.repo.CommitObject(*hash)
	if err != nil {
		return Script{}, fmt.Errorf("loader: commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return Script{}, fmt.Errorf("loader: tree %s: %w", hash, err)
	}

	f, err := tree.File(file)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return Script{}, fmt.Errorf("%w: %s at %s", ErrNotFound, file, rev)
		}
		return Script{}, fmt.Errorf("loader: %s at %s: %w", file, rev, err)
	}
	text, err := f.Contents()
	if err != nil {
		return Script{}, fmt.Errorf("loader: read %s at %s: %w", file, rev, err)
	}

	return Script{Ref: ref, Kind: SourceGit, Path: rev + ":" + file, Text: text}, nil
}

// discoverRepository opens the repository whose work tree contains dir.
func discoverRepository(dir string) (*git.Repository, error) {
	root := dir
	for {
		if fi, err := os.Stat(filepath.Join(root, gitDir)); err == nil && fi.IsDir() {
			break
		}
		parent := filepath.Dir(root)
		if parent == root {
			return nil, fmt.Errorf("%w: %s", ErrNoRepository, dir)
		}
		root = parent
	}

	wt := osfs.New(root)
	dot, err := wt.Chroot(gitDir)
	if err != nil {
		return nil, err
	}
	storer := filesystem.NewStorageWithOptions(dot, cache.NewObjectLRUDefault(), filesystem.Options{})

	repo, err := git.Open(storer, wt)
	if err != nil {
		return nil, fmt.Errorf("loader: open repository %s: %w", root, err)
	}
	return repo, nil
}

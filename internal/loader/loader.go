// Package loader resolves script references to SQL text.
//
// A reference is one of
//
//	path/to/script.sql      local file, relative to the working directory
//	git:<rev>:<path>        file at a revision of the enclosing git repository
//	s3://bucket/key         object fetched with the default AWS credential chain
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/go-git/go-git/v6"
)

var ErrNotFound = errors.New("loader: script not found")

const (
	gitPrefix = "git:"
	s3Prefix  = "s3://"
)

type SourceKind string

const (
	SourceFile SourceKind = "file"
	SourceGit  SourceKind = "git"
	SourceS3   SourceKind = "s3"
)

// Script is the loaded text plus where it came from.
type Script struct {
	Ref  string
	Kind SourceKind
	// Path is the resolved location: an absolute file path, "<rev>:<path>" or "bucket/key".
	Path string
	Text string
}

type Loader struct {
	fs  billy.Filesystem
	dir string

	repo     *git.Repository
	openRepo func() (*git.Repository, error)

	s3    ObjectGetter
	newS3 func(ctx context.Context) (ObjectGetter, error)
}

type Option func(*Loader)

// WithFilesystem serves local references from fs, resolving relative paths against dir.
func WithFilesystem(fs billy.Filesystem, dir string) Option {
	return func(l *Loader) {
		l.fs = fs
		l.dir = dir
	}
}

// WithRepository serves git: references from repo instead of discovering one.
func WithRepository(repo *git.Repository) Option {
	return func(l *Loader) { l.repo = repo }
}

// WithS3 serves s3:// references from client.
func WithS3(client ObjectGetter) Option {
	return func(l *Loader) { l.s3 = client }
}

// New returns a loader rooted at the current working directory.
func New(opts ...Option) (*Loader, error) {
	l := &Loader{newS3: defaultS3Client}
	for _, opt := range opts {
		opt(l)
	}

	if l.fs == nil {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("loader: working directory: %w", err)
		}
		l.fs = osfs.New(string(filepath.Separator))
		l.dir = cwd
	}
	if l.openRepo == nil {
		l.openRepo = func() (*git.Repository, error) { return discoverRepository(l.dir) }
	}
	return l, nil
}

// Load fetches the script behind ref. Missing files, revisions and objects
// are reported as ErrNotFound.
func (l *Loader) Load(ctx context.Context, ref string) (Script, error) {
	switch {
	case strings.HasPrefix(ref, gitPrefix):
		return l.loadGit(ref)
	case strings.HasPrefix(ref, s3Prefix):
		return l.loadS3(ctx, ref)
	default:
		return l.loadFile(ref)
	}
}

func (l *Loader) loadFile(ref string) (Script, error) {
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, path)
	}

	fi, err := l.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Script{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Script{}, fmt.Errorf("loader: stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return Script{}, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	data, err := util.ReadFile(l.fs, path)
	if err != nil {
		return Script{}, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return Script{Ref: ref, Kind: SourceFile, Path: path, Text: string(data)}, nil
}

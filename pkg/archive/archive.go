// Package archive mirrors DocBase posts into a directory of Markdown files
// with YAML front matter, and reads such a directory back into posts.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/iancoleman/strcase"
	"github.com/spf13/afero"

	"github.com/kit494way/docbase-go/pkg/docbase"
)

// PostLister walks every post matching a search. *docbase.Client implements
// it.
type PostLister interface {
	EachPost(ctx context.Context, opts docbase.SearchOptions, fn func(*docbase.Post) error) error
}

// Options configures an Archiver.
type Options struct {
	// Dir is the directory posts are written to and loaded from.
	Dir string

	// Fs is the destination filesystem.
	Fs afero.Fs

	// Overwrite replaces files that already exist. Existing files are
	// skipped otherwise.
	Overwrite bool

	Logger hclog.Logger
}

// Validate validates the options.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Dir, validation.Required),
		validation.Field(&o.Fs, validation.Required),
	)
}

// Archiver writes posts to files.
type Archiver struct {
	lister    PostLister
	fs        afero.Fs
	dir       string
	overwrite bool
	logger    hclog.Logger
}

// New creates an Archiver reading posts from lister.
func New(lister PostLister, opts Options) (*Archiver, error) {
	if lister == nil {
		return nil, fmt.Errorf("post lister is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid archive options: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Archiver{
		lister:    lister,
		fs:        opts.Fs,
		dir:       opts.Dir,
		overwrite: opts.Overwrite,
		logger:    logger.Named("archive"),
	}, nil
}

// Summary reports the outcome of an Archive run.
type Summary struct {
	// Written holds the paths of the files written, in the order the posts
	// were listed.
	Written []string

	// Skipped holds the paths of files that already existed.
	Skipped []string

	// Failed is the number of posts that could not be written.
	Failed int
}

// Archive writes every post matching opts to its own file. A post that
// cannot be written does not stop the run; all such failures are returned
// together once the listing is done. The returned Summary is never nil.
func (a *Archiver) Archive(ctx context.Context, opts docbase.SearchOptions) (*Summary, error) {
	summary := &Summary{}

	if err := a.fs.MkdirAll(a.dir, 0o755); err != nil {
		return summary, fmt.Errorf("error creating archive directory: %w", err)
	}

	var result *multierror.Error

	err := a.lister.EachPost(ctx, opts, func(post *docbase.Post) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		path, written, err := a.write(post)
		switch {
		case err != nil:
			summary.Failed++
			result = multierror.Append(result, err)
		case written:
			summary.Written = append(summary.Written, path)
			a.logger.Debug("wrote post", "id", post.ID, "path", path)
		default:
			summary.Skipped = append(summary.Skipped, path)
			a.logger.Debug("skipped existing file", "id", post.ID, "path", path)
		}
		return nil
	})
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("error listing posts: %w", err))
	}

	a.logger.Info("archive complete",
		"dir", a.dir,
		"written", len(summary.Written),
		"skipped", len(summary.Skipped),
		"failed", summary.Failed,
	)

	return summary, result.ErrorOrNil()
}

// write stores post and reports whether a file was written.
func (a *Archiver) write(post *docbase.Post) (string, bool, error) {
	if post.ID == 0 {
		return "", false, fmt.Errorf("post %q: %w", post.Title, docbase.ErrNotPersisted)
	}

	path := filepath.Join(a.dir, FileName(post))

	if !a.overwrite {
		exists, err := afero.Exists(a.fs, path)
		if err != nil {
			return path, false, fmt.Errorf("error checking %s: %w", path, err)
		}
		if exists {
			return path, false, nil
		}
	}

	data, err := Render(post)
	if err != nil {
		return path, false, err
	}

	if err := afero.WriteFile(a.fs, path, data, 0o644); err != nil {
		return path, false, fmt.Errorf("error writing post %d: %w", post.ID, err)
	}

	return path, true, nil
}

// Load reads every archived post under the directory, ordered by id. Files
// that fail to parse are reported together and the remaining posts are
// still returned.
func (a *Archiver) Load(ctx context.Context) ([]*docbase.Post, error) {
	var (
		posts  []*docbase.Post
		result *multierror.Error
	)

	err := afero.Walk(a.fs, a.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}

		data, err := afero.ReadFile(a.fs, path)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("error reading %s: %w", path, err))
			return nil
		}

		post, err := Parse(data)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("error parsing %s: %w", path, err))
			return nil
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking archive directory: %w", err)
	}

	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })

	a.logger.Debug("loaded archive", "dir", a.dir, "posts", len(posts))

	return posts, result.ErrorOrNil()
}

// FileName returns the archive file name of post: its id followed by the
// kebab-cased title.
func FileName(post *docbase.Post) string {
	slug := slugify(post.Title)
	if slug == "" {
		return fmt.Sprintf("%d.md", post.ID)
	}
	return fmt.Sprintf("%d-%s.md", post.ID, slug)
}

func slugify(title string) string {
	kebab := strcase.ToKebab(title)

	var b strings.Builder
	lastDash := true
	for _, r := range kebab {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			lastDash = false
		case r == '-':
			if !lastDash {
				b.WriteRune(r)
				lastDash = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

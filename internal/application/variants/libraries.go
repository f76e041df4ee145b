package variants

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/turtacn/minorchanges/internal/config"
	"github.com/turtacn/minorchanges/internal/domain/minorchanges"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/internal/infrastructure/storage/minio"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// ObjectOpener opens s3:// library locations.
type ObjectOpener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// LoadedLibraries are the parsed libraries plus a digest of their bytes.
type LoadedLibraries struct {
	minorchanges.Libraries
	Digest string
}

// LibraryLoader reads the configured libraries from local files or from
// object storage.
type LibraryLoader struct {
	remote ObjectOpener
	logger logging.Logger
}

// NewLibraryLoader returns a loader.  remote may be nil when no library
// lives in object storage.
func NewLibraryLoader(remote ObjectOpener, logger logging.Logger) *LibraryLoader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &LibraryLoader{remote: remote, logger: logger.Named("libraries")}
}

// Load parses every configured library.  Fragments with a count below
// minSupport are skipped.
func (l *LibraryLoader) Load(ctx context.Context, cfg config.LibrariesConfig, minSupport int) (LoadedLibraries, error) {
	var out LoadedLibraries
	digest := sha256.New()

	if cfg.Fragments != "" {
		err := l.read(ctx, cfg.Fragments, digest, func(r io.Reader) (err error) {
			out.Fragments, err = minorchanges.LoadFragments(r, minSupport)
			return err
		})
		if err != nil {
			return out, err
		}
		l.logger.Info("Fragments loaded", logging.String("location", cfg.Fragments), logging.Int("count", out.Fragments.Len()))
	}
	digest.Write([]byte{0})

	if cfg.BivalentFragments != "" {
		err := l.read(ctx, cfg.BivalentFragments, digest, func(r io.Reader) (err error) {
			out.Bivalent, err = minorchanges.LoadBivalentFragments(r, minSupport)
			return err
		})
		if err != nil {
			return out, err
		}
		l.logger.Info("Bivalent fragments loaded", logging.String("location", cfg.BivalentFragments), logging.Int("count", out.Bivalent.Len()))
	}
	digest.Write([]byte{0})

	if cfg.Reactions != "" {
		err := l.read(ctx, cfg.Reactions, digest, func(r io.Reader) (err error) {
			out.Reactions, err = minorchanges.LoadReactions(r)
			return err
		})
		if err != nil {
			return out, err
		}
		l.logger.Info("Reactions loaded", logging.String("location", cfg.Reactions), logging.Int("count", out.Reactions.Len()))
	}

	out.Digest = hex.EncodeToString(digest.Sum(nil)[:12])
	return out, nil
}

func (l *LibraryLoader) read(ctx context.Context, location string, digest hash.Hash, parse func(io.Reader) error) error {
	rc, err := l.open(ctx, location)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := parse(io.TeeReader(rc, digest)); err != nil {
		if errors.GetCode(err) == errors.CodeUnknown {
			return errors.Wrap(err, errors.CodeLibraryLoadFailed, "failed to read library").WithDetail(location)
		}
		return errors.Wrap(err, errors.CodeUnknown, "invalid library").WithDetail(location)
	}
	return nil
}

func (l *LibraryLoader) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if minio.IsURI(location) {
		if l.remote == nil {
			return nil, errors.New(errors.CodeConfigInvalid, "object storage is not configured").WithDetail(location)
		}
		return l.remote.Open(ctx, location)
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeLibraryLoadFailed, "failed to open library").WithDetail(location)
	}
	return f, nil
}

//Personal.AI order the ending

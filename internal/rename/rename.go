// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rename gives every PDF in a directory a name derived from its
// bibliographic metadata and remembers which files it has handled.
//
// Files are processed one at a time. A file's content hash is recorded, and
// the state saved, only after its copy or rename succeeded, so an interrupted
// run loses at most the file it was working on.
package rename

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/pdiddy/paper-renamer/internal/extract"
	"github.com/pdiddy/paper-renamer/internal/filename"
	"github.com/pdiddy/paper-renamer/internal/hashstore"
	"github.com/pdiddy/paper-renamer/pkg/types"
)

// candidateSuffix is matched against the raw file name, so "foopdf" counts
// and "paper.PDF" does not.
const candidateSuffix = "pdf"

// ErrTargetExists is returned when the computed name is already taken by a
// file with different content.
var ErrTargetExists = errors.New("target file already exists")

// Hasher computes content hashes.
type Hasher interface {
	Hash(path string) (types.ContentHash, error)
}

// MetadataExtractor extracts metadata from one document.
type MetadataExtractor interface {
	Extract(ctx context.Context, path string) (extract.Result, error)
}

// Options control one Process call.
type Options struct {
	// Rename moves files instead of copying them.
	Rename bool
	// Force reprocesses files whose hash is already recorded.
	Force bool
	// DryRun reports the planned names without touching files or state.
	DryRun bool
}

// Summary holds the per-outcome counts of a run.
type Summary struct {
	Copied     int
	Renamed    int
	Unchanged  int
	Skipped    int
	NoMetadata int
	Planned    int
}

// Total returns the number of candidate files seen.
func (s Summary) Total() int {
	return s.Copied + s.Renamed + s.Unchanged + s.Skipped + s.NoMetadata + s.Planned
}

// Recorded returns the number of files whose hash was added this run.
func (s Summary) Recorded() int {
	return s.Copied + s.Renamed + s.Unchanged
}

// Processor runs the per-directory loop.
type Processor struct {
	fs        afero.Fs
	hasher    Hasher
	extractor MetadataExtractor
	store     hashstore.Store
	w         io.Writer
	log       *slog.Logger
}

// NewProcessor wires a Processor. Status lines are written to w.
func NewProcessor(fs afero.Fs, hasher Hasher, extractor MetadataExtractor, store hashstore.Store, w io.Writer, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		fs:        fs,
		hasher:    hasher,
		extractor: extractor,
		store:     store,
		w:         w,
		log:       log,
	}
}

// Process handles every candidate file directly inside dir, in name order.
// Files without extractable metadata are reported and left unrecorded so a
// later run tries them again. Filesystem, model, and state errors abort the
// run; the returned Summary covers the files finished before that.
func (p *Processor) Process(ctx context.Context, dir string, opts Options) (Summary, error) {
	var summary Summary

	entries, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		return summary, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	processed, err := p.store.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("loading processed hashes: %w", err)
	}
	p.log.Debug("rename.start", "dir", dir, "entries", len(entries), "known_hashes", processed.Len(),
		"rename", opts.Rename, "force", opts.Force, "dry_run", opts.DryRun)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		path := filepath.Join(dir, entry.Name())
		if !p.isCandidate(entry, path) {
			continue
		}
		if err := p.processFile(ctx, dir, path, processed, opts, &summary); err != nil {
			return summary, err
		}
	}

	fmt.Fprintf(p.w, "\nSummary: %d copied, %d renamed, %d unchanged, %d skipped, %d without metadata",
		summary.Copied, summary.Renamed, summary.Unchanged, summary.Skipped, summary.NoMetadata)
	if opts.DryRun {
		fmt.Fprintf(p.w, ", %d planned", summary.Planned)
	}
	fmt.Fprintf(p.w, " (total: %d)\n", summary.Total())
	return summary, nil
}

// isCandidate reports whether the entry is a regular file, following
// symlinks, whose name ends in the candidate suffix.
func (p *Processor) isCandidate(entry os.FileInfo, path string) bool {
	if !strings.HasSuffix(entry.Name(), candidateSuffix) {
		return false
	}
	info := entry
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := p.fs.Stat(path)
		if err != nil {
			p.log.Warn("rename.symlink.broken", "file", path, "error", err)
			return false
		}
		info = target
	}
	return info.Mode().IsRegular()
}

func (p *Processor) processFile(ctx context.Context, dir, path string, processed hashstore.Set, opts Options, summary *Summary) error {
	name := filepath.Base(path)

	hash, err := p.hasher.Hash(path)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	if processed.Has(hash) && !opts.Force {
		fmt.Fprintf(p.w, "skipped   %s (already processed)\n", name)
		summary.Skipped++
		return nil
	}

	res, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return fmt.Errorf("extracting metadata from %s: %w", path, err)
	}
	if !res.Found() {
		p.log.Info("rename.no_metadata", "file", path, "status", res.Status.String(),
			"calls", res.Calls, "pages", res.Pages, "response", res.Response)
		fmt.Fprintf(p.w, "no-meta   %s (%s)\n", name, res.Status)
		summary.NoMetadata++
		return nil
	}

	newName := filename.Build(res.Metadata)
	target := filepath.Join(dir, newName)
	p.log.Debug("rename.target", "file", path, "target", target, "year", res.Metadata.Year,
		"title", res.Metadata.Title, "last_author", res.Metadata.LastAuthor)

	if opts.DryRun {
		verb := "copy"
		if opts.Rename {
			verb = "rename"
		}
		fmt.Fprintf(p.w, "would %-6s %s -> %s\n", verb, name, newName)
		summary.Planned++
		return nil
	}

	done, err := p.place(path, target, opts.Rename)
	if err != nil {
		return err
	}
	switch {
	case done == placedNothing:
		fmt.Fprintf(p.w, "unchanged %s\n", name)
		summary.Unchanged++
	case opts.Rename:
		fmt.Fprintf(p.w, "renamed   %s -> %s\n", name, newName)
		summary.Renamed++
	default:
		fmt.Fprintf(p.w, "copied    %s -> %s\n", name, newName)
		summary.Copied++
	}

	processed.Add(hash)
	if err := p.store.Save(ctx, processed); err != nil {
		return fmt.Errorf("saving processed hashes: %w", err)
	}
	return nil
}

type placement int

const (
	placedNothing placement = iota
	placedFile
)

// place copies or moves src to target. It does nothing when src already is
// the target, or, when copying, when the target holds byte-identical content.
// Any other existing target is ErrTargetExists.
func (p *Processor) place(src, target string, move bool) (placement, error) {
	if filepath.Clean(src) == filepath.Clean(target) {
		return placedNothing, nil
	}

	if _, err := p.fs.Stat(target); err == nil {
		if move {
			return placedNothing, fmt.Errorf("placing %s: %s: %w", src, target, ErrTargetExists)
		}
		same, err := sameContents(p.fs, src, target)
		if err != nil {
			return placedNothing, err
		}
		if !same {
			return placedNothing, fmt.Errorf("placing %s: %s: %w", src, target, ErrTargetExists)
		}
		p.log.Info("rename.target.identical", "file", src, "target", target)
		return placedNothing, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return placedNothing, fmt.Errorf("stat %s: %w", target, err)
	}

	if move {
		if err := p.fs.Rename(src, target); err != nil {
			return placedNothing, fmt.Errorf("renaming %s to %s: %w", src, target, err)
		}
		return placedFile, nil
	}

	if err := copyFile(p.fs, src, target); err != nil {
		return placedNothing, err
	}
	return placedFile, nil
}

// sameContents compares two files byte for byte.
func sameContents(fs afero.Fs, a, b string) (bool, error) {
	fa, err := fs.Open(a)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", a, err)
	}
	defer fa.Close()
	fb, err := fs.Open(b)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", b, err)
	}
	defer fb.Close()

	ia, err := fa.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", a, err)
	}
	ib, err := fb.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", b, err)
	}
	if ia.Size() != ib.Size() {
		return false, nil
	}

	bufA := make([]byte, 32*1024)
	bufB := make([]byte, 32*1024)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		doneA := errors.Is(errA, io.EOF) || errors.Is(errA, io.ErrUnexpectedEOF)
		doneB := errors.Is(errB, io.EOF) || errors.Is(errB, io.ErrUnexpectedEOF)
		if errA != nil && !doneA {
			return false, fmt.Errorf("reading %s: %w", a, errA)
		}
		if errB != nil && !doneB {
			return false, fmt.Errorf("reading %s: %w", b, errB)
		}
		if doneA || doneB {
			return doneA && doneB, nil
		}
	}
}

// copyFile copies src to a new file at dst with the same permission bits.
// dst must not exist.
func copyFile(fs afero.Fs, src, dst string) (err error) {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", dst, cerr)
		}
		if err != nil {
			fs.Remove(dst)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return nil
}

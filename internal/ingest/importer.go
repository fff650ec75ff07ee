package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/bunseki/internal/models"
	"github.com/hyperjump/bunseki/internal/storage"
	"github.com/hyperjump/bunseki/pkg/utils"
)

const (
	metaKeySourcePath  = "source_path"
	metaKeySourceMtime = "source_mtime"
	metaKeySourceSize  = "source_size"
)

// Outcome is what ImportFile did with a file.
type Outcome int

const (
	// Imported means the document was created or replaced.
	Imported Outcome = iota
	// Unchanged means the stored document already matches the file's mtime and size.
	Unchanged
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o == Unchanged {
		return "unchanged"
	}
	return "imported"
}

// Progress is called after each file of a directory import. done counts processed files.
type Progress func(done, total int, path string)

// Summary reports the result of a directory import.
type Summary struct {
	Imported  int
	Unchanged int
	Failed    int
	Errors    []error
}

// Importer turns files into documents owned by a principal.
type Importer struct {
	store     storage.Storage
	extractor *Extractor
	logger    *zap.Logger
}

// NewImporter creates an importer writing to store.
func NewImporter(store storage.Storage, opts ...Option) *Importer {
	o := applyOptions(opts)
	return &Importer{
		store:     store,
		extractor: NewExtractor(),
		logger:    o.logger,
	}
}

// ImportFile extracts the file at path and stores it as a document owned by owner.
// The title is the file name and the content the extracted text with whitespace collapsed.
// Files already stored with the same mtime and size are skipped.
func (im *Importer) ImportFile(ctx context.Context, owner, path string) (Outcome, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Imported, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return Imported, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return Imported, fmt.Errorf("%s is a directory", absPath)
	}

	docID := DocumentID(owner, absPath)
	if im.unchanged(ctx, docID, owner, info) {
		im.logger.Debug("skipping unchanged file", zap.String("path", absPath))
		return Unchanged, nil
	}

	text, err := im.extractor.Extract(absPath)
	if err != nil {
		return Imported, fmt.Errorf("extract %s: %w", absPath, err)
	}

	doc := &models.Document{
		ID:      docID,
		OwnerID: owner,
		Title:   filepath.Base(absPath),
		Content: utils.CollapseWhitespace(text),
		Metadata: map[string]interface{}{
			metaKeySourcePath:  absPath,
			metaKeySourceMtime: strconv.FormatInt(info.ModTime().UnixNano(), 10),
			metaKeySourceSize:  strconv.FormatInt(info.Size(), 10),
		},
	}
	if err := im.store.UpsertDocument(ctx, doc); err != nil {
		return Imported, fmt.Errorf("store %s: %w", absPath, err)
	}
	im.logger.Debug("file imported", zap.String("path", absPath), zap.String("doc_id", docID))
	return Imported, nil
}

func (im *Importer) unchanged(ctx context.Context, docID, owner string, info os.FileInfo) bool {
	existing, err := im.store.GetDocument(ctx, docID)
	if err != nil || existing.OwnerID != owner {
		return false
	}
	return metadataString(existing.Metadata, metaKeySourceMtime) == strconv.FormatInt(info.ModTime().UnixNano(), 10) &&
		metadataString(existing.Metadata, metaKeySourceSize) == strconv.FormatInt(info.Size(), 10)
}

func metadataString(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// ImportDirectory imports every file under root that passes filter. Per-file failures are
// logged and counted; the walk continues. The returned error is reserved for a bad root,
// a bad filter or cancellation.
func (im *Importer) ImportDirectory(ctx context.Context, owner, root string, filter *Filter, progress Progress) (*Summary, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	files, err := collectFiles(absRoot, filter)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outcome, err := im.ImportFile(ctx, owner, path)
		switch {
		case err != nil:
			summary.Failed++
			summary.Errors = append(summary.Errors, err)
			im.logger.Warn("import failed", zap.String("path", path), zap.Error(err))
		case outcome == Unchanged:
			summary.Unchanged++
		default:
			summary.Imported++
		}
		if progress != nil {
			progress(i+1, len(files), path)
		}
	}
	return summary, nil
}

// collectFiles lists the files under root that pass filter, in lexical walk order.
// A root that is a single file is returned as is when it passes the extension filter.
func collectFiles(root string, filter *Filter) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		if filter != nil && !MatchExtension(root, filter.Extensions) {
			return nil, nil
		}
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if filter.ExcludesDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if filter.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// Remove deletes the document imported from path by owner. A file that was never
// imported is not an error.
func (im *Importer) Remove(ctx context.Context, owner, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	err = im.store.DeleteDocument(ctx, owner, DocumentID(owner, absPath))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove %s: %w", absPath, err)
	}
	im.logger.Debug("document removed", zap.String("path", absPath))
	return nil
}

// RemoveTree deletes every document owner imported from a file under dir and
// returns how many were removed. It serves directories that disappear as a whole,
// where no per-file events can be relied on.
func (im *Importer) RemoveTree(ctx context.Context, owner, dir string) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("resolve path: %w", err)
	}
	docs, err := im.store.ListAccessibleDocuments(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("remove tree %s: %w", absDir, err)
	}
	prefix := absDir + string(filepath.Separator)
	removed := 0
	for _, doc := range docs {
		src, ok := doc.Metadata[metaKeySourcePath].(string)
		if !ok || doc.OwnerID != owner || !strings.HasPrefix(src, prefix) {
			continue
		}
		// Only documents this importer created; a user document may carry the same key.
		if doc.ID != DocumentID(owner, src) {
			continue
		}
		err := im.store.DeleteDocument(ctx, owner, doc.ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("remove %s: %w", src, err)
		}
		removed++
	}
	if removed > 0 {
		im.logger.Debug("documents removed under directory", zap.String("dir", absDir), zap.Int("count", removed))
	}
	return removed, nil
}

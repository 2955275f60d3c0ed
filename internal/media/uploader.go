package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/vidtube/backend/internal/logging"
)

// ErrAssetStorageUnavailable indicates no object store is configured.
var ErrAssetStorageUnavailable = errors.New("asset storage unavailable")

// AssetStorage persists uploaded media and returns a durable public location.
type AssetStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// UploadResult describes a successfully stored asset.
type UploadResult struct {
	URL  string
	Key  string
	Size int64
}

// Uploader forwards locally staged files to the configured asset host.
//
// Upload failures are swallowed: callers receive a nil result and decide
// whether the missing asset is fatal. The staged file is removed after every
// attempt, success or failure, so a public upload endpoint cannot accumulate
// temp files on disk.
type Uploader struct {
	storage AssetStorage
	logger  *slog.Logger
}

// NewUploader constructs an Uploader. A nil storage is allowed; every upload
// then degrades to the no-result sentinel.
func NewUploader(storage AssetStorage, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{storage: storage, logger: logger}
}

// UploadLocalFile stores the file at localPath under keyPrefix and returns the
// result, or nil when the path is empty or the upload fails.
func (u *Uploader) UploadLocalFile(ctx context.Context, localPath, keyPrefix string) *UploadResult {
	if strings.TrimSpace(localPath) == "" {
		return nil
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			u.logger.Warn("remove staged upload", "path", localPath, "error", err)
		}
	}()

	ctx, span := logging.StartSpan(ctx, "media.upload")
	defer span.End()

	if u.storage == nil {
		logging.FromContext(ctx).Warn("upload skipped", "path", localPath, "error", ErrAssetStorageUnavailable)
		return nil
	}

	file, err := os.Open(localPath)
	if err != nil {
		logging.FromContext(ctx).Error("open staged upload", "path", localPath, "error", err)
		return nil
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		logging.FromContext(ctx).Error("stat staged upload", "path", localPath, "error", err)
		return nil
	}

	key := path.Join(keyPrefix, path.Base(localPath))
	location, err := u.storage.Save(ctx, key, file)
	if err != nil {
		logging.FromContext(ctx).Error("upload asset", "key", key, "error", err)
		return nil
	}

	return &UploadResult{
		URL:  location,
		Key:  key,
		Size: info.Size(),
	}
}

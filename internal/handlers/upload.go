package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// maxUploadBytes caps how much of a multipart body is held in memory while
// parsing; larger files spill to disk.
const maxUploadBytes = 64 << 20

// errMissingFile reports that the request carried no file under the field name.
var errMissingFile = errors.New("file missing from request")

// stageUpload copies the named multipart file into dir and returns the staged
// path. The caller owns the file; the media uploader removes it after handoff.
func stageUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", errMissingFile
		}
		return "", fmt.Errorf("read form file %q: %w", field, err)
	}
	defer file.Close()

	staged, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}

	if _, err := io.Copy(staged, file); err != nil {
		staged.Close()
		os.Remove(staged.Name())
		return "", fmt.Errorf("stage upload %q: %w", field, err)
	}
	if err := staged.Close(); err != nil {
		os.Remove(staged.Name())
		return "", fmt.Errorf("close staging file: %w", err)
	}

	return staged.Name(), nil
}

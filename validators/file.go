package validators

import (
	"errors"
	"mime/multipart"

	"github.com/spf13/viper"
)

var (
	ErrFileEmpty    = errors.New("uploaded file is empty")
	ErrFileTooBig   = errors.New("uploaded file is too big")
	ErrFileNoName   = errors.New("uploaded file has no name")
	ErrFileNameLong = errors.New("file name is too long")
)

// FileValidator checks an incoming multipart upload against the configured
// limits before any bytes are pushed to the blob store.
func FileValidator(fh *multipart.FileHeader) error {
	if fh.Size <= 0 {
		return ErrFileEmpty
	}

	if fh.Size > viper.GetInt64("upload.max_size")<<20 {
		return ErrFileTooBig
	}

	if fh.Filename == "" {
		return ErrFileNoName
	}

	if len(fh.Filename) > 255 {
		return ErrFileNameLong
	}

	return nil
}

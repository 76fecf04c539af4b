package telegram

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const maxPhotoBytes = 20 << 20

var errPhotoTooLarge = errors.New("photo is too large")

// httpClient переиспользуется для всех загрузок файлов
var httpClient = resty.New().SetDebug(false).SetTimeout(30 * time.Second)

// downloadFile скачивает файл по прямой ссылке Telegram с ограничением размера.
func downloadFile(getFileURL func(fileID string) (string, error), fileID string, declaredSize int) ([]byte, error) {
	if declaredSize > maxPhotoBytes {
		return nil, errPhotoTooLarge
	}

	log.Debug().Str("fileID", fileID).Msg("downloading file")
	url, err := getFileURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	res, err := httpClient.R().Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("download file: status %d", res.StatusCode())
	}

	data := res.Body()
	if len(data) > maxPhotoBytes {
		return nil, errPhotoTooLarge
	}
	return data, nil
}

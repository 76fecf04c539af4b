package telegram

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	data, err := downloadFile(func(id string) (string, error) { return srv.URL + "/" + id, nil }, "photo", 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	_, err = downloadFile(func(id string) (string, error) { return srv.URL + "/" + id, nil }, "missing", 0)
	assert.Error(t, err)

	_, err = downloadFile(func(string) (string, error) { return "", errors.New("no file") }, "x", 0)
	assert.Error(t, err)

	_, err = downloadFile(func(string) (string, error) { return srv.URL, nil }, "huge", maxPhotoBytes+1)
	assert.ErrorIs(t, err, errPhotoTooLarge)
}

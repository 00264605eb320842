package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// YandexDiskDownloader скачивает файлы по публичным ссылкам Яндекс.Диска
type YandexDiskDownloader struct {
	apiURL string
	client *http.Client
}

func NewYandexDiskDownloader(apiURL string, timeout time.Duration) *YandexDiskDownloader {
	return &YandexDiskDownloader{
		apiURL: apiURL,
		client: &http.Client{Timeout: timeout},
	}
}

type downloadLink struct {
	Href string `json:"href"`
}

// Download возвращает поток с содержимым публичного файла. Поток закрывает вызывающий.
func (d *YandexDiskDownloader) Download(ctx context.Context, publicURL string) (io.ReadCloser, error) {
	query := url.Values{"public_key": {publicURL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.apiURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "download link request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download link get")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("invalid link %s: HTTP status %s", publicURL, resp.Status)
	}

	var link downloadLink
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, errors.Wrap(err, "download link decode")
	}
	if link.Href == "" {
		return nil, errors.New("no download link in response")
	}

	fileReq, err := http.NewRequestWithContext(ctx, http.MethodGet, link.Href, nil)
	if err != nil {
		return nil, errors.Wrap(err, "file request")
	}
	fileResp, err := d.client.Do(fileReq)
	if err != nil {
		return nil, errors.Wrap(err, "file get")
	}
	if fileResp.StatusCode != http.StatusOK {
		fileResp.Body.Close()
		return nil, errors.New("HTTP status " + fileResp.Status)
	}
	return fileResp.Body, nil
}

package api

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxImageBytes caps recipe image downloads.
const maxImageBytes = 8 << 20

// FetchImage downloads and decodes a recipe image. Absolute URLs are fetched
// as is; relative ones are resolved against the API base URL.
func (c *Client) FetchImage(ctx context.Context, url string) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("recipe has no image")
	}
	target := url
	if url[0] == '/' {
		target = c.baseURL + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe("image", http.MethodGet, 0, elapsed)
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.observe("image", http.MethodGet, resp.StatusCode, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: http.MethodGet, Path: url, Code: resp.StatusCode}
	}

	img, format, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	c.log.Debug("image fetched", zap.String("url", url), zap.String("format", format), zap.Duration("elapsed", elapsed))
	return img, nil
}

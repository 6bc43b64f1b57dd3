package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
)

type uploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

func (u uploadResponse) Validate() error {
	if u.ImageURL == "" {
		return errors.New("imageUrl is required")
	}
	return nil
}

// UploadImage sends an image as multipart field "image" and returns its public URL
func (c *Client) UploadImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	resp, err := call[uploadResponse](ctx, c, request{
		method:      http.MethodPost,
		route:       "upload/image",
		path:        "upload/image",
		raw:         &buf,
		contentType: form.FormDataContentType(),
	})
	if err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
	"github.com/custodia-labs/omniq-cli/internal/logger"
)

// UploadFailedMessage is reported when the backend rejects an upload without detail.
const UploadFailedMessage = domain.UploadFailedMessage

// ListDocuments returns the known documents, or ok=false when they could not be fetched.
func (c *Client) ListDocuments(ctx context.Context) ([]domain.DocumentDescriptor, bool) {
	resp, err := c.do(ctx, http.MethodGet, pathDocuments, nil, "")
	if err != nil {
		return nil, false
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		logger.Warn("List documents: HTTP %d", resp.StatusCode)
		return nil, false
	}

	var docs []domain.DocumentDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		logger.Warn("List documents: decode: %v", err)
		return nil, false
	}
	if docs == nil {
		return nil, false
	}
	return docs, true
}

// UploadDocuments streams files as one multipart request under the field "files".
// The body is built for this call only. Any failure becomes an UploadResult.
func (c *Client) UploadDocuments(ctx context.Context, files []domain.UploadFile, maxSizePerFile int64) *domain.UploadResult {
	if maxSizePerFile <= 0 {
		maxSizePerFile = domain.DefaultMaxUploadFileSize
	}

	body, contentType, err := buildUploadBody(files, maxSizePerFile)
	if err != nil {
		logger.Warn("Upload: %v", err)
		return domain.NewUploadFailure(err.Error())
	}

	resp, err := c.do(ctx, http.MethodPost, pathDocuments, body, contentType)
	if err != nil {
		return domain.NewUploadFailure(err.Error())
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		logger.Warn("Upload: HTTP %d", resp.StatusCode)
		return domain.NewUploadFailure(UploadFailedMessage)
	}

	var result domain.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.NewUploadFailure(fmt.Sprintf("decode upload response: %v", err))
	}
	if result.UploadedFiles == nil {
		result.UploadedFiles = []string{}
	}
	if !result.IsSuccessful && result.Error == "" {
		result.Error = UploadFailedMessage
	}
	return &result
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// buildUploadBody writes every file into a fresh multipart body, failing on
// the first file that cannot be read or exceeds limit bytes.
func buildUploadBody(files []domain.UploadFile, limit int64) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		if f.Content == nil {
			return nil, "", fmt.Errorf("upload %q: no content", f.Name)
		}
		if f.Size > limit {
			return nil, "", fmt.Errorf("upload %q: %w (%d > %d bytes)", f.Name, domain.ErrFileTooLarge, f.Size, limit)
		}

		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(f.Name)))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("upload %q: %w", f.Name, err)
		}

		n, err := io.Copy(part, io.LimitReader(f.Content, limit+1))
		if err != nil {
			return nil, "", fmt.Errorf("upload %q: read: %w", f.Name, err)
		}
		if n > limit {
			return nil, "", fmt.Errorf("upload %q: %w (more than %d bytes)", f.Name, domain.ErrFileTooLarge, limit)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("upload: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/fleetdesk/apiserver/internal/storage"
	"github.com/google/uuid"
)

// Attachments externalizes data-URI payloads to object storage and
// removes blobs when their owning record supersedes or deletes them.
type Attachments struct {
	storage *storage.Storage
}

func NewAttachments(store *storage.Storage) *Attachments {
	return &Attachments{storage: store}
}

// IsDataURI reports whether a submitted value is a self-describing
// embedded payload (e.g. "data:image/png;base64,....").
func IsDataURI(value string) bool {
	return strings.HasPrefix(value, "data:") && strings.Contains(value, ";base64,")
}

// Upload decodes a data URI and stores it under a deterministic,
// collision-resistant key. hint carries a record-specific identifier
// (plate number for vehicle documents) when one exists.
func (a *Attachments) Upload(ctx context.Context, resource, field, hint, dataURI string) (string, error) {
	if a == nil || a.storage == nil {
		return "", errors.New("no attachment storage configured")
	}

	contentType, payload, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	name := slug(field)
	if strings.TrimSpace(hint) != "" {
		name = slug(hint) + "_" + name
	}
	key := fmt.Sprintf("%s/%s_%s%s", resource, name, uuid.NewString(), extensionFor(contentType))

	return a.storage.Put(ctx, key, bytes.NewReader(payload), int64(len(payload)), contentType)
}

// Delete removes the blob behind a previously issued URL. Unknown URLs
// (not produced by the configured backend) are reported as errors so
// the caller can log them; they never abort the primary operation.
func (a *Attachments) Delete(ctx context.Context, url string) error {
	if a == nil || a.storage == nil {
		return errors.New("no attachment storage configured")
	}
	key, ok := a.storage.Resolve(url)
	if !ok {
		return fmt.Errorf("url not owned by attachment storage: %s", url)
	}
	return a.storage.Delete(ctx, key)
}

// Owned reports whether a stored value is a URL the configured backend
// produced, i.e. an attachment this system manages.
func (a *Attachments) Owned(value string) bool {
	if a == nil || a.storage == nil {
		return false
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return false
	}
	_, ok := a.storage.Resolve(value)
	return ok
}

func decodeDataURI(dataURI string) (contentType string, payload []byte, err error) {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return "", nil, errors.New("not a data uri")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("malformed data uri")
	}
	contentType, _, _ = strings.Cut(meta, ";")
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, errors.New("data uri is not base64 encoded")
	}
	payload, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	return contentType, payload, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}

func slug(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return b.String()
}

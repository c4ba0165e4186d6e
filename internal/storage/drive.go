package storage

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fleetdesk/apiserver/config"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Google Drive shares files by ID; these cover the URL shapes that
// circulate for Drive files (uc?id=, open?id=, /file/d/).
var driveIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
}

// DriveClient stores attachments as files in a Google Drive folder.
// This is the original deployment target for uploaded photos and PDFs.
type DriveClient struct {
	service  *drive.Service
	folderID string
}

// NewDriveClient constructs a Drive client from config.
func NewDriveClient(ctx context.Context, cfg config.DriveConfig) (*DriveClient, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &DriveClient{
		service:  service,
		folderID: cfg.FolderID,
	}, nil
}

// EnsureBucket verifies the configured folder is reachable. With no
// folder configured, files land in the service account's root.
func (d *DriveClient) EnsureBucket(ctx context.Context) error {
	if strings.TrimSpace(d.folderID) == "" {
		return nil
	}
	_, err := d.service.Files.Get(d.folderID).Fields("id").Context(ctx).Do()
	return err
}

// Put uploads a file, makes it link-readable and returns its uc?id= URL.
func (d *DriveClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	meta := &drive.File{Name: key}
	if strings.TrimSpace(d.folderID) != "" {
		meta.Parents = []string{d.folderID}
	}

	created, err := d.service.Files.Create(meta).
		Media(r, googleapi.ContentType(contentType)).
		Fields("id").
		Context(ctx).Do()
	if err != nil {
		return "", err
	}

	_, err = d.service.Permissions.Create(created.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://drive.google.com/uc?id=%s", created.Id), nil
}

// Get downloads a file by its ID.
func (d *DriveClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := d.service.Files.Get(key).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Delete removes a file by its ID.
func (d *DriveClient) Delete(ctx context.Context, key string) error {
	return d.service.Files.Delete(key).Context(ctx).Do()
}

// Resolve extracts the file ID from a Drive URL.
func (d *DriveClient) Resolve(url string) (string, bool) {
	if !strings.Contains(url, "drive.google.com") {
		return "", false
	}
	for _, pattern := range driveIDPatterns {
		if match := pattern.FindStringSubmatch(url); match != nil {
			return match[1], true
		}
	}
	return "", false
}

// Bucket returns the configured folder ID.
func (d *DriveClient) Bucket() string {
	return d.folderID
}

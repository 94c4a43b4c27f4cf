package storage

import (
	"bytes"
	"context"
	"fmt"

	"fieldsurvey/pkg/types"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// DriveStore uploads evidence into a Google Drive folder.
type DriveStore struct {
	svc         *drive.Service
	folderID    string
	sharePublic bool
}

// NewDriveStore creates a store writing into folderID. When sharePublic is
// set every file gets an "anyone with the link" reader permission.
func NewDriveStore(svc *drive.Service, folderID string, sharePublic bool) *DriveStore {
	return &DriveStore{
		svc:         svc,
		folderID:    folderID,
		sharePublic: sharePublic,
	}
}

// Put creates the file and returns its web view link
func (s *DriveStore) Put(ctx context.Context, obj types.EvidenceObject) (string, error) {
	file := &drive.File{
		Name:     obj.FileName,
		MimeType: obj.ContentType,
		Parents:  []string{s.folderID},
		AppProperties: map[string]string{
			"account_id": obj.AccountID,
			"field":      string(obj.Field),
		},
	}

	created, err := s.svc.Files.Create(file).
		Media(bytes.NewReader(obj.Data), googleapi.ContentType(obj.ContentType)).
		SupportsAllDrives(true).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create drive file %s: %w", obj.FileName, err)
	}

	if s.sharePublic {
		_, err = s.svc.Permissions.Create(created.Id, &drive.Permission{
			Type: "anyone",
			Role: "reader",
		}).SupportsAllDrives(true).Context(ctx).Do()
		if err != nil {
			// an unshared file is useless as a link, drop it
			_ = s.svc.Files.Delete(created.Id).SupportsAllDrives(true).Context(ctx).Do()
			return "", fmt.Errorf("share drive file %s: %w", obj.FileName, err)
		}
	}

	if created.WebViewLink != "" {
		return created.WebViewLink, nil
	}

	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id), nil
}

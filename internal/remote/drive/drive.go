// Package drive lists Google Drive folders through the v3 files API.
package drive

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/logging"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
)

// listFields trims each page to exactly what navigation needs.
const listFields = "nextPageToken, files(id, name, mimeType, webViewLink, modifiedTime, shortcutDetails(targetId, targetMimeType))"

// pageSize is the Drive maximum; folders bigger than one page are
// fetched with the page-token loop in List.
const pageSize = 1000

// Client lists folder children via the Drive v3 API.
type Client struct {
	svc *drive.Service
}

// New creates a Drive client. apiKey may be empty when another client
// option (test HTTP client, ambient credentials) supplies auth.
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	var all []option.ClientOption
	if apiKey != "" {
		all = append(all, option.WithAPIKey(apiKey))
	}
	all = append(all, opts...)

	svc, err := drive.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// List fetches every direct child of a folder, following page tokens
// until the listing is complete. Trashed entries are excluded by the
// query itself.
func (c *Client) List(ctx context.Context, folderID string) ([]models.Entry, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var out []models.Entry
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(query).
			Fields(googleapi.Field(listFields)).
			OrderBy("name").
			PageSize(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list folder %s: %w", folderID, err)
		}

		for _, f := range resp.Files {
			out = append(out, entryFromFile(f))
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	logging.Debug("drive listing fetched",
		zap.String("folder_id", folderID),
		zap.Int("entries", len(out)),
	)
	return out, nil
}

func entryFromFile(f *drive.File) models.Entry {
	e := models.Entry{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		WebViewLink: f.WebViewLink,
	}
	if f.ModifiedTime != "" {
		// An unparsable timestamp degrades to a zero time; the
		// dispatcher orders those last instead of failing the listing.
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			e.ModifiedTime = t
		}
	}
	if f.ShortcutDetails != nil {
		e.Alias = &models.AliasTarget{
			ID:       f.ShortcutDetails.TargetId,
			MimeType: f.ShortcutDetails.TargetMimeType,
		}
	}
	return e
}

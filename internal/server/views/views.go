// Package views converts service results into the wire messages shared by
// the gRPC and REST transports.
package views

import (
	"sort"
	"strings"

	"github.com/dmitrijs2005/securedoc/internal/api"
	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
	"github.com/dmitrijs2005/securedoc/internal/server/services"
)

func Tokens(p *services.TokenPair) *api.TokenResponse {
	return &api.TokenResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func Profile(u *models.User) *api.Profile {
	return &api.Profile{ID: u.ID, Email: u.Email, PublicKey: u.PublicKey, IsStaff: u.IsStaff}
}

func User(u *models.User) *api.UserInfo {
	return &api.UserInfo{ID: u.ID, Email: u.Email, PublicKey: u.PublicKey}
}

func Users(users []*models.User) *api.ListUsersResponse {
	out := &api.ListUsersResponse{Users: make([]api.UserInfo, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, *User(u))
	}
	return out
}

func Category(c *models.Category) *api.Category {
	return &api.Category{ID: c.ID, Name: c.Name, Description: c.Description}
}

func Categories(cats []*models.Category) *api.ListCategoriesResponse {
	out := &api.ListCategoriesResponse{Categories: make([]api.Category, 0, len(cats))}
	for _, c := range cats {
		out.Categories = append(out.Categories, *Category(c))
	}
	return out
}

func UploadIntent(i *services.UploadIntent) *api.PrepareUploadResponse {
	return &api.PrepareUploadResponse{
		UploadURL:      i.UploadURL,
		StorageLocator: i.StorageLocator,
		ExpiresAt:      i.ExpiresAt,
	}
}

func Recipients(in []api.Recipient) []models.Recipient {
	out := make([]models.Recipient, 0, len(in))
	for _, r := range in {
		out = append(out, models.Recipient{UserID: r.UserID, EncryptedKeyEnvelope: r.EncryptedKeyEnvelope})
	}
	return out
}

func ConfirmRequest(in *api.ConfirmUploadRequest) *services.ConfirmRequest {
	return &services.ConfirmRequest{
		StorageLocator: in.StorageLocator,
		Filename:       in.Filename,
		ContentHash:    in.ContentHash,
		Signature:      in.Signature,
		MimeType:       in.MimeType,
		CategoryID:     in.CategoryID,
		Recipients:     Recipients(in.Recipients),
		OwnerEnvelope:  in.OwnerEnvelope,
	}
}

func Grants(holders []*models.GrantHolder) *api.ListGrantsResponse {
	out := &api.ListGrantsResponse{Grants: make([]api.GrantHolder, 0, len(holders))}
	for _, h := range holders {
		out.Grants = append(out.Grants, api.GrantHolder{UserID: h.UserID, Email: h.Email, CreatedAt: h.CreatedAt})
	}
	return out
}

func DownloadTicket(t *services.DownloadTicket) *api.DownloadDocumentResponse {
	return &api.DownloadDocumentResponse{
		DocumentID:           t.DocumentID,
		Filename:             t.Filename,
		MimeType:             t.MimeType,
		DownloadURL:          t.DownloadURL,
		ExpiresAt:            t.ExpiresAt,
		ContentHash:          t.ContentHash,
		Signature:            t.Signature,
		EncryptedKeyEnvelope: t.EncryptedKeyEnvelope,
		Owner:                api.Owner{Email: t.OwnerEmail, PublicKey: t.OwnerPublicKey},
		CreatedAt:            t.CreatedAt,
	}
}

func summary(d *models.AccessibleDocument) api.DocumentSummary {
	return api.DocumentSummary{
		ID:                   d.ID,
		Filename:             d.Filename,
		MimeType:             d.MimeType,
		Owner:                api.Owner{Email: d.OwnerEmail, PublicKey: d.OwnerPublicKey},
		CreatedAt:            d.CreatedAt,
		ContentHash:          d.ContentHash,
		Signature:            d.Signature,
		StorageLocator:       d.StorageLocator,
		EncryptedKeyEnvelope: d.Grant.EncryptedKeyEnvelope,
	}
}

// GroupDocuments buckets docs by category name. Groups are sorted by name,
// case-insensitively, with the uncategorized bucket last. Document order
// inside a group is preserved.
func GroupDocuments(docs []*models.AccessibleDocument) *api.ListDocumentsResponse {
	index := map[string]int{}
	groups := []api.DocumentGroup{}
	for _, d := range docs {
		name := d.CategoryName
		if d.CategoryID == nil || name == "" {
			name = common.UncategorizedBucket
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, api.DocumentGroup{Category: name})
		}
		groups[i].Documents = append(groups[i].Documents, summary(d))
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Category, groups[j].Category
		if (a == common.UncategorizedBucket) != (b == common.UncategorizedBucket) {
			return b == common.UncategorizedBucket
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})

	return &api.ListDocumentsResponse{Groups: groups}
}

package api

import "time"

// Messages are shared by the gRPC service and the REST gateway.

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type ProfileRequest struct{}

type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	PublicKey string `json:"public_key"`
	IsStaff   bool   `json:"is_staff"`
}

type RegisterPublicKeyRequest struct {
	PublicKey string `json:"public_key"`
}

type ListUsersRequest struct{}

type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	PublicKey string `json:"public_key"`
}

type ListUsersResponse struct {
	Users []UserInfo `json:"users"`
}

type GetUserByEmailRequest struct {
	Email string `json:"email"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []Category `json:"categories"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DeleteCategoryRequest struct {
	ID string `json:"id"`
}

type PrepareUploadRequest struct {
	Filename string `json:"filename"`
}

type PrepareUploadResponse struct {
	UploadURL      string    `json:"upload_url"`
	StorageLocator string    `json:"storage_locator"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type Recipient struct {
	UserID               string `json:"user_id"`
	EncryptedKeyEnvelope string `json:"encrypted_key_envelope"`
}

type ConfirmUploadRequest struct {
	StorageLocator string      `json:"storage_locator"`
	Filename       string      `json:"filename"`
	ContentHash    string      `json:"content_hash"`
	Signature      string      `json:"signature"`
	MimeType       string      `json:"mime_type"`
	CategoryID     *string     `json:"category_id,omitempty"`
	Recipients     []Recipient `json:"recipients"`
	OwnerEnvelope  string      `json:"owner_envelope"`
}

type ConfirmUploadResponse struct {
	DocumentID string `json:"document_id"`
}

type Owner struct {
	Email     string `json:"email"`
	PublicKey string `json:"public_key"`
}

type DocumentSummary struct {
	ID                   string    `json:"id"`
	Filename             string    `json:"filename"`
	MimeType             string    `json:"mime_type"`
	Owner                Owner     `json:"owner"`
	CreatedAt            time.Time `json:"created_at"`
	ContentHash          string    `json:"content_hash"`
	Signature            string    `json:"signature"`
	StorageLocator       string    `json:"storage_locator"`
	EncryptedKeyEnvelope string    `json:"encrypted_key_envelope"`
}

type DocumentGroup struct {
	Category  string            `json:"category"`
	Documents []DocumentSummary `json:"documents"`
}

type ListDocumentsRequest struct{}

type ListDocumentsResponse struct {
	Groups []DocumentGroup `json:"groups"`
}

type ShareDocumentRequest struct {
	DocumentID string      `json:"document_id"`
	Recipients []Recipient `json:"recipients"`
}

type ShareDocumentResponse struct {
	Granted int `json:"granted"`
}

type ListGrantsRequest struct {
	DocumentID string `json:"document_id"`
}

type GrantHolder struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type ListGrantsResponse struct {
	Grants []GrantHolder `json:"grants"`
}

type DownloadDocumentRequest struct {
	DocumentID string `json:"document_id"`
}

type DownloadDocumentResponse struct {
	DocumentID           string    `json:"document_id"`
	Filename             string    `json:"filename"`
	MimeType             string    `json:"mime_type"`
	DownloadURL          string    `json:"download_url"`
	ExpiresAt            time.Time `json:"expires_at"`
	ContentHash          string    `json:"content_hash"`
	Signature            string    `json:"signature"`
	EncryptedKeyEnvelope string    `json:"encrypted_key_envelope"`
	Owner                Owner     `json:"owner"`
	CreatedAt            time.Time `json:"created_at"`
}

type DeleteDocumentRequest struct {
	DocumentID string `json:"document_id"`
}

// ErrorBody is the REST error envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

package models

import "time"

// Document is the immutable descriptor of an uploaded ciphertext blob.
// ContentHash and Signature are carried verbatim and never interpreted.
type Document struct {
	ID             string
	Filename       string
	StorageLocator string
	ContentHash    string
	Signature      string
	MimeType       string
	OwnerID        string
	// CategoryID is nil for uncategorized documents.
	CategoryID *string
	CreatedAt  time.Time
}

// AccessGrant authorizes UserID to fetch DocumentID and carries the document
// key encrypted for that user. At most one grant exists per pair.
type AccessGrant struct {
	DocumentID           string
	UserID               string
	EncryptedKeyEnvelope string
	CreatedAt            time.Time
}

// Recipient is one entry of a share set: who, and their envelope.
type Recipient struct {
	UserID               string
	EncryptedKeyEnvelope string
}

// AccessibleDocument is a document joined with the reader's own grant and the
// display data listing endpoints need.
type AccessibleDocument struct {
	Document
	CategoryName   string
	OwnerEmail     string
	OwnerPublicKey string
	Grant          AccessGrant
}

// GrantHolder describes who holds a grant, without the envelope.
type GrantHolder struct {
	UserID    string
	Email     string
	CreatedAt time.Time
}

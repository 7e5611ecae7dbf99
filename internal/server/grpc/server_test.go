package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/securedoc/internal/api"
	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server/auth"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
	"github.com/dmitrijs2005/securedoc/internal/server/services"
	"github.com/dmitrijs2005/securedoc/internal/server/services/servicestest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "test-secret"

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := newTestServer("secret")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, servicestest.New().Set(), "secret")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

// startBufconn serves stubs over an in-memory listener and returns a client.
func startBufconn(t *testing.T, stubs *servicestest.Stubs) *api.Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", logging.Nop{}, stubs.Set(), testSecret)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})

	return api.NewClient(conn)
}

func authed(t *testing.T, userID string) context.Context {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, token)
}

func TestE2E_PingAndLogin(t *testing.T) {
	stubs := servicestest.New()
	stubs.Users.LoginFn = func(_ context.Context, email, password string) (*services.TokenPair, error) {
		if email == "alice@example.com" && password == "pw" {
			return &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
		}
		return nil, common.ErrorUnauthorized
	}
	client := startBufconn(t, stubs)
	ctx := context.Background()

	pong, err := client.Ping(ctx, &api.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", pong.Status)

	tokens, err := client.Login(ctx, &api.LoginRequest{Email: "alice@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, &api.TokenResponse{AccessToken: "a", RefreshToken: "r"}, tokens)

	_, err = client.Login(ctx, &api.LoginRequest{Email: "alice@example.com", Password: "nope"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestE2E_ProtectedRequiresToken(t *testing.T) {
	client := startBufconn(t, servicestest.New())

	_, err := client.ListDocuments(context.Background(), &api.ListDocumentsRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestE2E_UploadShareDownload(t *testing.T) {
	stubs := servicestest.New()
	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stubs.Uploads.PrepareFn = func(_ context.Context, filename string) (*services.UploadIntent, error) {
		return &services.UploadIntent{StorageLocator: "abc_" + filename, UploadURL: "https://blob/put", ExpiresAt: expires}, nil
	}
	var confirmed *services.ConfirmRequest
	var confirmOwner string
	stubs.Uploads.ConfirmFn = func(_ context.Context, ownerID string, req *services.ConfirmRequest) (*models.Document, error) {
		confirmOwner, confirmed = ownerID, req
		return &models.Document{ID: "doc-1"}, nil
	}
	stubs.Ledger.ShareFn = func(_ context.Context, documentID, requesterID string, recipients []models.Recipient) (int, error) {
		if requesterID != "owner" {
			return 0, common.ErrNotOwner
		}
		return len(recipients), nil
	}
	stubs.Downloads.IssueFn = func(_ context.Context, documentID, requesterID string) (*services.DownloadTicket, error) {
		if requesterID != "bob" {
			return nil, common.ErrNoGrant
		}
		return &services.DownloadTicket{DocumentID: documentID, DownloadURL: "https://blob/get", ExpiresAt: expires, OwnerEmail: "owner@example.com"}, nil
	}

	client := startBufconn(t, stubs)
	owner := authed(t, "owner")

	intent, err := client.PrepareUpload(owner, &api.PrepareUploadRequest{Filename: "a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "abc_a.pdf", intent.StorageLocator)
	assert.True(t, expires.Equal(intent.ExpiresAt))

	res, err := client.ConfirmUpload(owner, &api.ConfirmUploadRequest{
		StorageLocator: intent.StorageLocator,
		Filename:       "a.pdf",
		ContentHash:    "h",
		Signature:      "s",
		OwnerEnvelope:  "env-owner",
		Recipients:     []api.Recipient{{UserID: "bob", EncryptedKeyEnvelope: "env-bob"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", res.DocumentID)
	assert.Equal(t, "owner", confirmOwner)
	require.Len(t, confirmed.Recipients, 1)
	assert.Nil(t, confirmed.CategoryID)

	shared, err := client.ShareDocument(owner, &api.ShareDocumentRequest{
		DocumentID: "doc-1",
		Recipients: []api.Recipient{{UserID: "carol", EncryptedKeyEnvelope: "env-carol"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, shared.Granted)

	_, err = client.ShareDocument(authed(t, "bob"), &api.ShareDocumentRequest{DocumentID: "doc-1"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	ticket, err := client.DownloadDocument(authed(t, "bob"), &api.DownloadDocumentRequest{DocumentID: "doc-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://blob/get", ticket.DownloadURL)
	assert.Equal(t, "owner@example.com", ticket.Owner.Email)

	_, err = client.DownloadDocument(authed(t, "mallory"), &api.DownloadDocumentRequest{DocumentID: "doc-1"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestE2E_ErrorMapping(t *testing.T) {
	stubs := servicestest.New()
	stubs.Uploads.PrepareFn = func(context.Context, string) (*services.UploadIntent, error) {
		return nil, common.ErrInvalidFilename
	}
	stubs.Uploads.ConfirmFn = func(context.Context, string, *services.ConfirmRequest) (*models.Document, error) {
		return nil, common.ErrObjectNotFound
	}
	stubs.Categories.CreateFn = func(context.Context, string, string, string) (*models.Category, error) {
		return nil, common.ErrDuplicateCategory
	}
	stubs.Categories.DeleteFn = func(context.Context, string, string) error {
		return common.ErrCategoryInUse
	}
	stubs.Documents.DeleteFn = func(context.Context, string, string) error {
		return common.ErrDocumentNotFound
	}

	client := startBufconn(t, stubs)
	ctx := authed(t, "u1")

	_, err := client.PrepareUpload(ctx, &api.PrepareUploadRequest{Filename: "../x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.ConfirmUpload(ctx, &api.ConfirmUploadRequest{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.CreateCategory(ctx, &api.CreateCategoryRequest{Name: "Taxes"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.DeleteCategory(ctx, &api.DeleteCategoryRequest{ID: "c1"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.DeleteDocument(ctx, &api.DeleteDocumentRequest{DocumentID: "d1"})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, common.ErrDocumentNotFound.Error(), status.Convert(err).Message())

	// not stubbed
	_, err = client.ListGrants(ctx, &api.ListGrantsRequest{DocumentID: "d1"})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestE2E_ListDocumentsGrouped(t *testing.T) {
	stubs := servicestest.New()
	cat := "c1"
	stubs.Documents.ListAccessibleToFn = func(_ context.Context, userID string) ([]*models.AccessibleDocument, error) {
		if userID != "u1" {
			return nil, common.ErrNoGrant
		}
		return []*models.AccessibleDocument{
			{Document: models.Document{ID: "d1"}},
			{Document: models.Document{ID: "d2", CategoryID: &cat}, CategoryName: "Taxes"},
		}, nil
	}
	client := startBufconn(t, stubs)

	out, err := client.ListDocuments(authed(t, "u1"), &api.ListDocumentsRequest{})
	require.NoError(t, err)
	require.Len(t, out.Groups, 2)
	assert.Equal(t, "Taxes", out.Groups[0].Category)
	assert.Equal(t, common.UncategorizedBucket, out.Groups[1].Category)
}

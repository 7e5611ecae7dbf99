package grpc

import (
	"context"

	"github.com/dmitrijs2005/securedoc/internal/api"
	"github.com/dmitrijs2005/securedoc/internal/server/views"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.TokenResponse, error) {

	tokens, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodLogin, err)
	}

	return views.Tokens(tokens), nil

}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenResponse, error) {

	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodRefreshToken, err)
	}

	return views.Tokens(tokens), nil

}

func (s *GRPCServer) GetProfile(ctx context.Context, req *api.ProfileRequest) (*api.Profile, error) {

	u, err := s.users.Profile(ctx, userIDFrom(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodGetProfile, err)
	}

	return views.Profile(u), nil

}

func (s *GRPCServer) RegisterPublicKey(ctx context.Context, req *api.RegisterPublicKeyRequest) (*api.Empty, error) {

	if err := s.users.RegisterPublicKey(ctx, userIDFrom(ctx), req.PublicKey); err != nil {
		return nil, s.toStatus(ctx, api.MethodRegisterPublicKey, err)
	}

	return &api.Empty{}, nil

}

func (s *GRPCServer) ListUsers(ctx context.Context, req *api.ListUsersRequest) (*api.ListUsersResponse, error) {

	users, err := s.users.List(ctx, userIDFrom(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodListUsers, err)
	}

	return views.Users(users), nil

}

func (s *GRPCServer) GetUserByEmail(ctx context.Context, req *api.GetUserByEmailRequest) (*api.UserInfo, error) {

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodGetUserByEmail, err)
	}

	return views.User(u), nil

}

func (s *GRPCServer) ListCategories(ctx context.Context, req *api.ListCategoriesRequest) (*api.ListCategoriesResponse, error) {

	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodListCategories, err)
	}

	return views.Categories(cats), nil

}

func (s *GRPCServer) CreateCategory(ctx context.Context, req *api.CreateCategoryRequest) (*api.Category, error) {

	c, err := s.categories.Create(ctx, userIDFrom(ctx), req.Name, req.Description)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodCreateCategory, err)
	}

	s.logger.Info(ctx, "Category created", "category_id", c.ID)
	return views.Category(c), nil

}

func (s *GRPCServer) DeleteCategory(ctx context.Context, req *api.DeleteCategoryRequest) (*api.Empty, error) {

	if err := s.categories.Delete(ctx, userIDFrom(ctx), req.ID); err != nil {
		return nil, s.toStatus(ctx, api.MethodDeleteCategory, err)
	}

	return &api.Empty{}, nil

}

func (s *GRPCServer) PrepareUpload(ctx context.Context, req *api.PrepareUploadRequest) (*api.PrepareUploadResponse, error) {

	intent, err := s.uploads.Prepare(ctx, req.Filename)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodPrepareUpload, err)
	}

	return views.UploadIntent(intent), nil

}

func (s *GRPCServer) ConfirmUpload(ctx context.Context, req *api.ConfirmUploadRequest) (*api.ConfirmUploadResponse, error) {

	doc, err := s.uploads.Confirm(ctx, userIDFrom(ctx), views.ConfirmRequest(req))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodConfirmUpload, err)
	}

	return &api.ConfirmUploadResponse{DocumentID: doc.ID}, nil

}

func (s *GRPCServer) ListDocuments(ctx context.Context, req *api.ListDocumentsRequest) (*api.ListDocumentsResponse, error) {

	docs, err := s.documents.ListAccessibleTo(ctx, userIDFrom(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodListDocuments, err)
	}

	return views.GroupDocuments(docs), nil

}

func (s *GRPCServer) ShareDocument(ctx context.Context, req *api.ShareDocumentRequest) (*api.ShareDocumentResponse, error) {

	n, err := s.ledger.Share(ctx, req.DocumentID, userIDFrom(ctx), views.Recipients(req.Recipients))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodShareDocument, err)
	}

	return &api.ShareDocumentResponse{Granted: n}, nil

}

func (s *GRPCServer) ListGrants(ctx context.Context, req *api.ListGrantsRequest) (*api.ListGrantsResponse, error) {

	holders, err := s.ledger.ListGrants(ctx, req.DocumentID, userIDFrom(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodListGrants, err)
	}

	return views.Grants(holders), nil

}

func (s *GRPCServer) DownloadDocument(ctx context.Context, req *api.DownloadDocumentRequest) (*api.DownloadDocumentResponse, error) {

	ticket, err := s.downloads.Issue(ctx, req.DocumentID, userIDFrom(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodDownloadDocument, err)
	}

	return views.DownloadTicket(ticket), nil

}

func (s *GRPCServer) DeleteDocument(ctx context.Context, req *api.DeleteDocumentRequest) (*api.Empty, error) {

	if err := s.documents.Delete(ctx, req.DocumentID, userIDFrom(ctx)); err != nil {
		return nil, s.toStatus(ctx, api.MethodDeleteDocument, err)
	}

	return &api.Empty{}, nil

}

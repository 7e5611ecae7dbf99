package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "securedoc.v1.SecureDoc"

const (
	MethodPing              = "Ping"
	MethodLogin             = "Login"
	MethodRefreshToken      = "RefreshToken"
	MethodGetProfile        = "GetProfile"
	MethodRegisterPublicKey = "RegisterPublicKey"
	MethodListUsers         = "ListUsers"
	MethodGetUserByEmail    = "GetUserByEmail"
	MethodListCategories    = "ListCategories"
	MethodCreateCategory    = "CreateCategory"
	MethodDeleteCategory    = "DeleteCategory"
	MethodPrepareUpload     = "PrepareUpload"
	MethodConfirmUpload     = "ConfirmUpload"
	MethodListDocuments     = "ListDocuments"
	MethodShareDocument     = "ShareDocument"
	MethodListGrants        = "ListGrants"
	MethodDownloadDocument  = "DownloadDocument"
	MethodDeleteDocument    = "DeleteDocument"
)

// FullMethod returns the gRPC path of method, e.g. /securedoc.v1.SecureDoc/Ping.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// SecureDocServer is implemented by the gRPC transport.
type SecureDocServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	GetProfile(context.Context, *ProfileRequest) (*Profile, error)
	RegisterPublicKey(context.Context, *RegisterPublicKeyRequest) (*Empty, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	GetUserByEmail(context.Context, *GetUserByEmailRequest) (*UserInfo, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	CreateCategory(context.Context, *CreateCategoryRequest) (*Category, error)
	DeleteCategory(context.Context, *DeleteCategoryRequest) (*Empty, error)
	PrepareUpload(context.Context, *PrepareUploadRequest) (*PrepareUploadResponse, error)
	ConfirmUpload(context.Context, *ConfirmUploadRequest) (*ConfirmUploadResponse, error)
	ListDocuments(context.Context, *ListDocumentsRequest) (*ListDocumentsResponse, error)
	ShareDocument(context.Context, *ShareDocumentRequest) (*ShareDocumentResponse, error)
	ListGrants(context.Context, *ListGrantsRequest) (*ListGrantsResponse, error)
	DownloadDocument(context.Context, *DownloadDocumentRequest) (*DownloadDocumentResponse, error)
	DeleteDocument(context.Context, *DeleteDocumentRequest) (*Empty, error)
}

// UnimplementedSecureDocServer answers every call with codes.Unimplemented.
// Embed it to stay forward compatible when methods are added.
type UnimplementedSecureDocServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedSecureDocServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedSecureDocServer) Login(context.Context, *LoginRequest) (*TokenResponse, error) {
	return nil, unimplemented(MethodLogin)
}
func (UnimplementedSecureDocServer) RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error) {
	return nil, unimplemented(MethodRefreshToken)
}
func (UnimplementedSecureDocServer) GetProfile(context.Context, *ProfileRequest) (*Profile, error) {
	return nil, unimplemented(MethodGetProfile)
}
func (UnimplementedSecureDocServer) RegisterPublicKey(context.Context, *RegisterPublicKeyRequest) (*Empty, error) {
	return nil, unimplemented(MethodRegisterPublicKey)
}
func (UnimplementedSecureDocServer) ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error) {
	return nil, unimplemented(MethodListUsers)
}
func (UnimplementedSecureDocServer) GetUserByEmail(context.Context, *GetUserByEmailRequest) (*UserInfo, error) {
	return nil, unimplemented(MethodGetUserByEmail)
}
func (UnimplementedSecureDocServer) ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	return nil, unimplemented(MethodListCategories)
}
func (UnimplementedSecureDocServer) CreateCategory(context.Context, *CreateCategoryRequest) (*Category, error) {
	return nil, unimplemented(MethodCreateCategory)
}
func (UnimplementedSecureDocServer) DeleteCategory(context.Context, *DeleteCategoryRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeleteCategory)
}
func (UnimplementedSecureDocServer) PrepareUpload(context.Context, *PrepareUploadRequest) (*PrepareUploadResponse, error) {
	return nil, unimplemented(MethodPrepareUpload)
}
func (UnimplementedSecureDocServer) ConfirmUpload(context.Context, *ConfirmUploadRequest) (*ConfirmUploadResponse, error) {
	return nil, unimplemented(MethodConfirmUpload)
}
func (UnimplementedSecureDocServer) ListDocuments(context.Context, *ListDocumentsRequest) (*ListDocumentsResponse, error) {
	return nil, unimplemented(MethodListDocuments)
}
func (UnimplementedSecureDocServer) ShareDocument(context.Context, *ShareDocumentRequest) (*ShareDocumentResponse, error) {
	return nil, unimplemented(MethodShareDocument)
}
func (UnimplementedSecureDocServer) ListGrants(context.Context, *ListGrantsRequest) (*ListGrantsResponse, error) {
	return nil, unimplemented(MethodListGrants)
}
func (UnimplementedSecureDocServer) DownloadDocument(context.Context, *DownloadDocumentRequest) (*DownloadDocumentResponse, error) {
	return nil, unimplemented(MethodDownloadDocument)
}
func (UnimplementedSecureDocServer) DeleteDocument(context.Context, *DeleteDocumentRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeleteDocument)
}

// unary builds the method descriptor for one request/response call, running
// the server interceptor chain the same way generated code does.
func unary[Req, Resp any](method string, call func(SecureDocServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SecureDocServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SecureDocServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the SecureDoc gRPC service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SecureDocServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, SecureDocServer.Ping),
		unary(MethodLogin, SecureDocServer.Login),
		unary(MethodRefreshToken, SecureDocServer.RefreshToken),
		unary(MethodGetProfile, SecureDocServer.GetProfile),
		unary(MethodRegisterPublicKey, SecureDocServer.RegisterPublicKey),
		unary(MethodListUsers, SecureDocServer.ListUsers),
		unary(MethodGetUserByEmail, SecureDocServer.GetUserByEmail),
		unary(MethodListCategories, SecureDocServer.ListCategories),
		unary(MethodCreateCategory, SecureDocServer.CreateCategory),
		unary(MethodDeleteCategory, SecureDocServer.DeleteCategory),
		unary(MethodPrepareUpload, SecureDocServer.PrepareUpload),
		unary(MethodConfirmUpload, SecureDocServer.ConfirmUpload),
		unary(MethodListDocuments, SecureDocServer.ListDocuments),
		unary(MethodShareDocument, SecureDocServer.ShareDocument),
		unary(MethodListGrants, SecureDocServer.ListGrants),
		unary(MethodDownloadDocument, SecureDocServer.DownloadDocument),
		unary(MethodDeleteDocument, SecureDocServer.DeleteDocument),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "securedoc/v1/securedoc.json",
}

// RegisterSecureDocServer registers srv with s.
func RegisterSecureDocServer(s grpc.ServiceRegistrar, srv SecureDocServer) {
	s.RegisterService(&ServiceDesc, srv)
}

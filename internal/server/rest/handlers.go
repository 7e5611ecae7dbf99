package rest

import (
	"net/http"

	"github.com/dmitrijs2005/securedoc/internal/api"
	"github.com/dmitrijs2005/securedoc/internal/server/views"
	"github.com/gorilla/mux"
)

func (s *HTTPServer) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.PingResponse{Status: "OK"})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tokens, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views.Tokens(tokens))
}

func (s *HTTPServer) refresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshTokenRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tokens, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views.Tokens(tokens))
}

func (s *HTTPServer) profile(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Profile(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views.Profile(u))
}

func (s *HTTPServer) registerPublicKey(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterPublicKeyRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.users.RegisterPublicKey(r.Context(), userIDFrom(r.Context()), req.PublicKey); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views.Users(users))
}

func (s *HTTPServer) userByEmail(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.GetByEmail(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views.User(u))
}

func (s *HTTPServer) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views.Categories(cats))
}

func (s *HTTPServer) createCategory(w http.ResponseWriter, r *http.Request) {
	var req api.CreateCategoryRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.categories.Create(r.Context(), userIDFrom(r.Context()), req.Name, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, views.Category(c))
}

func (s *HTTPServer) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.Delete(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) prepareUpload(w http.ResponseWriter, r *http.Request) {
	var req api.PrepareUploadRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	intent, err := s.uploads.Prepare(r.Context(), req.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views.UploadIntent(intent))
}

func (s *HTTPServer) confirmUpload(w http.ResponseWriter, r *http.Request) {
	var req api.ConfirmUploadRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.uploads.Confirm(r.Context(), userIDFrom(r.Context()), views.ConfirmRequest(&req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.ConfirmUploadResponse{DocumentID: doc.ID})
}

func (s *HTTPServer) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.ListAccessibleTo(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views.GroupDocuments(docs))
}

func (s *HTTPServer) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Delete(r.Context(), mux.Vars(r)["id"], userIDFrom(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) shareDocument(w http.ResponseWriter, r *http.Request) {
	// the path id wins over any document_id in the body
	var req api.ShareDocumentRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	n, err := s.ledger.Share(r.Context(), mux.Vars(r)["id"], userIDFrom(r.Context()), views.Recipients(req.Recipients))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.ShareDocumentResponse{Granted: n})
}

func (s *HTTPServer) listGrants(w http.ResponseWriter, r *http.Request) {
	holders, err := s.ledger.ListGrants(r.Context(), mux.Vars(r)["id"], userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views.Grants(holders))
}

func (s *HTTPServer) downloadDocument(w http.ResponseWriter, r *http.Request) {
	ticket, err := s.downloads.Issue(r.Context(), mux.Vars(r)["id"], userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, views.DownloadTicket(ticket))
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/go-social-nosql/internal/application/engagement"
	"github.com/go-social-nosql/internal/application/user"
	"github.com/go-social-nosql/internal/domain"
	"github.com/go-social-nosql/internal/pkg/validate"
	"github.com/go-social-nosql/internal/transport/http/middleware"
)

// maxUploadBytes bounds multipart bodies for avatar and post images.
const maxUploadBytes = 10 << 20

// UserHandler handles profile, search and follow endpoints.
type UserHandler struct {
	svc        user.Service
	engagement engagement.Service
}

func NewUserHandler(svc user.Service, eng engagement.Service) *UserHandler {
	return &UserHandler{svc: svc, engagement: eng}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, err)
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ok("user created").With("user", u.Public()))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("").With("user", u))
}

func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("").With("user", u))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, authed := middleware.ClaimsFromContext(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, err)
		return
	}
	u, err := h.svc.Update(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("user updated").With("user", u))
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	claims, authed := middleware.ClaimsFromContext(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	users, err := h.svc.Search(r.Context(), r.URL.Query().Get("username"), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("").With("users", users))
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	claims, authed := middleware.ClaimsFromContext(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer f.Close()

	url, err := h.svc.UploadAvatar(r.Context(), claims.UserID, f, header.Header.Get("Content-Type"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("avatar updated").With("user", map[string]string{"avatar": url}))
}

func (h *UserHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	claims, authed := middleware.ClaimsFromContext(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	res, err := h.engagement.ToggleFollow(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	msg := "user unfollowed"
	if res.Following {
		msg = "user followed"
	}
	writeJSON(w, http.StatusOK, ok(msg).
		With("following", res.Following).
		With("following_list", res.FollowingList))
}

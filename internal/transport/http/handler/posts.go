package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/go-social-nosql/internal/application/engagement"
	"github.com/go-social-nosql/internal/application/post"
	"github.com/go-social-nosql/internal/domain"
	"github.com/go-social-nosql/internal/pkg/validate"
	"github.com/go-social-nosql/internal/transport/http/middleware"
)

// PostHandler handles post, like and comment endpoints.
type PostHandler struct {
	svc        post.Service
	engagement engagement.Service
}

func NewPostHandler(svc post.Service, eng engagement.Service) *PostHandler {
	return &PostHandler{svc: svc, engagement: eng}
}

// Create accepts either a JSON body or a multipart form with optional
// "image" file.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, authed := middleware.ClaimsFromContext(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var (
		req domain.CreatePostRequest
		img *post.Image
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		req.Text = r.FormValue("text")
		req.Visibility = r.FormValue("visibility")
		if f, header, err := r.FormFile("image"); err == nil {
			defer f.Close()
			img = &post.Image{Body: f, ContentType: header.Header.Get("Content-Type")}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		httpError(w, err)
		return
	}
	p, err := h.svc.Create(r.Context(), claims.UserID, req, img)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ok("post created").With("post", p))
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, authed := middleware.ClaimsFromContext(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("post deleted"))
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	claims, authed := middleware.ClaimsFromContext(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	res, err := h.engagement.ToggleLike(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	msg := "like removed"
	if res.Liked {
		msg = "like added"
	}
	writeJSON(w, http.StatusOK, ok(msg).With("liked", res.Liked))
}

func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	claims, authed := middleware.ClaimsFromContext(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := validate.Struct(&req); err != nil {
		httpError(w, err)
		return
	}
	c, err := h.svc.AddComment(r.Context(), claims.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ok("comment added").With("comment", c))
}

func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListByAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("").With("posts", posts))
}

func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	claims, authed := middleware.ClaimsFromContext(r.Context())
	if !authed {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	posts, err := h.svc.Feed(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok("").With("posts", posts))
}

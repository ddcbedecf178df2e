package rest

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/foodgram/internal/server/models"
)

type registerRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=150"`
}

type registerResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AuthToken string `json:"auth_token"`
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,max=150"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

type updateMeRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=150"`
	// Avatar is a key from POST /api/users/me/avatar; "" removes the avatar.
	Avatar *string `json:"avatar" validate:"omitempty,max=512"`
}

// writeUser renders u as seen by the current viewer.
func (s *HTTPServer) writeUser(w http.ResponseWriter, r *http.Request, u *models.User, subscribed bool) {
	out, err := s.presentUser(r.Context(), u, subscribed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.svc.Users.Register(r.Context(), &models.User{
		Email:     strings.TrimSpace(req.Email),
		UserName:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", u.UserName)
	writeJSON(w, http.StatusCreated, registerResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.svc.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AuthToken: token})
}

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) {
	p, err := s.pageFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, total, err := s.svc.Users.List(r.Context(), userID(r.Context()), r.URL.Query().Get("search"), p.window())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	results := make([]userResponse, 0, len(list))
	for _, pr := range list {
		ur, err := s.presentUser(r.Context(), pr.User, pr.IsSubscribed)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		results = append(results, ur)
	}
	writeJSON(w, http.StatusOK, s.paginate(r, p, total, results))
}

func (s *HTTPServer) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	pr, err := s.svc.Users.Profile(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeUser(w, r, pr.User, pr.IsSubscribed)
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Users.Get(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeUser(w, r, u, false)
}

func (s *HTTPServer) updateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.svc.Users.UpdateProfile(r.Context(), userID(r.Context()), models.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarKey: req.Avatar,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeUser(w, r, u, false)
}

func (s *HTTPServer) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.svc.Images.PresignAvatarUpload(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, imageUploadResponse{Key: key, UploadURL: url})
}

func (s *HTTPServer) deleteAvatar(w http.ResponseWriter, r *http.Request) {
	empty := ""
	if _, err := s.svc.Users.UpdateProfile(r.Context(), userID(r.Context()), models.UserUpdate{AvatarKey: &empty}); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) setPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.svc.Users.SetPassword(r.Context(), userID(r.Context()), req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

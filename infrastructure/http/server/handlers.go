package server

import (
	"dm-lab/auth"
	"dm-lab/errors"
	"dm-lab/services"
	"log/slog"
	"net/http"
)

type Handlers struct {
	authService services.IAuthService
	chatService services.IChatService
	userService services.IUserService
	log         *slog.Logger
}

func NewHandlers(authService services.IAuthService, chatService services.IChatService,
	userService services.IUserService, log *slog.Logger) *Handlers {
	return &Handlers{
		authService: authService,
		chatService: chatService,
		userService: userService,
		log:         log,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// Register handles POST /api/register.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid input"})
		return
	}
	user, token, err := h.authService.Register(in.Username, in.Password, in.FullName)
	if err != nil {
		h.fail(w, r, err, "Failed to register user")
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		User:    user.Public(),
		Token:   token.String(),
	})
}

// Login handles POST /api/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid input"})
		return
	}
	user, token, err := h.authService.Login(in.Username, in.Password)
	if err != nil {
		h.fail(w, r, err, "Failed to login")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		User:    user.Public(),
		Token:   token.String(),
	})
}

// Logout handles POST /api/logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	if err := h.authService.Logout(session.ID); err != nil {
		h.fail(w, r, err, "Failed to logout")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logout successful"})
}

// ListUsers handles GET /api/users.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	users, err := h.userService.ListUsers(session.ID)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser handles GET /api/users/{id}.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SendMessage handles POST /api/messages. The sender is always the session owner.
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	var in sendMessageRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid input"})
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	message, err := h.chatService.SendMessage(session.ID, in.ReceiverID, in.Content)
	if err != nil {
		h.fail(w, r, err, "Failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "Message sent successfully", Data: message})
}

// GetConversation handles GET /api/messages/{userId}.
func (h *Handlers) GetConversation(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	messages, err := h.chatService.GetConversation(session.ID, r.PathValue("userId"))
	if err != nil {
		h.fail(w, r, err, "Failed to fetch messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// fail writes the error answer. Internal failures are logged and replaced by
// a generic message so storage details never reach the client.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := errors.MapToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error(fallback, "method", r.Method, "path", r.URL.Path, "error", err)
		message = fallback
	}
	writeJSON(w, status, errorResponse{Error: message})
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"blood-donor-registry/pkg/middleware"
	"blood-donor-registry/pkg/response"
	"blood-donor-registry/services/registry-service/workflow"

	"go.uber.org/zap"
)

type Registerer interface {
	Register(ctx context.Context, in workflow.RegisterInput) (*workflow.RegisterResult, error)
}

type Authenticator interface {
	Login(ctx context.Context, in workflow.LoginInput) (*workflow.LoginResult, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	registrar Registerer
	auth      Authenticator
	store     Pinger
	logger    *zap.Logger
}

func New(registrar Registerer, auth Authenticator, store Pinger, logger *zap.Logger) *Handler {
	return &Handler{registrar: registrar, auth: auth, store: store, logger: logger}
}

// weight accepts a JSON number or a numeric string.
type weight struct {
	value *float64
}

func (w *weight) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	w.value = &v
	return nil
}

type registerRequest struct {
	FullName string `json:"fullname"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Aadhar   string `json:"aadhar"`
	Weight   weight `json:"weight"`
	DOB      string `json:"dob"`
}

type registerResponse struct {
	Message    string            `json:"message"`
	EmailSent  bool              `json:"email_sent"`
	User       workflow.UserEcho `json:"user"`
	HospitalID string            `json:"hospital_id,omitempty"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input registerRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WithTrace(h.logger, r).Warn("invalid register payload", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	res, err := h.registrar.Register(r.Context(), workflow.RegisterInput{
		FullName: input.FullName,
		Phone:    input.Phone,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
		Aadhar:   input.Aadhar,
		Weight:   input.Weight.value,
		DOB:      input.DOB,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, registerResponse{
		Message:    res.Message,
		EmailSent:  res.EmailSent,
		User:       res.User,
		HospitalID: res.HospitalID,
	})
}

type loginRequest struct {
	Role       string `json:"role"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginUser struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Role    string    `json:"role"`
	User    loginUser `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WithTrace(h.logger, r).Warn("invalid login payload", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	res, err := h.auth.Login(r.Context(), workflow.LoginInput{
		Role:       input.Role,
		Identifier: input.Identifier,
		Password:   input.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Role:    string(res.Role),
		User:    loginUser{FullName: res.FullName, Email: res.Email},
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":  "UP",
		"service": "registry-service",
	}

	status := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		health["status"] = "DOWN"
		health["database"] = "disconnected"
		status = http.StatusServiceUnavailable
	} else {
		health["database"] = "connected"
	}

	response.JSON(w, status, health)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *workflow.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, verr.Reason)
	case errors.Is(err, workflow.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		middleware.WithTrace(h.logger, r).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, err.Error())
	}
}

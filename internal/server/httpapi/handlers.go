package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/s3vault/internal/common"
	"github.com/dmitrijs2005/s3vault/internal/server/models"
)

// maxUploadSize caps in-memory uploads; the core operates on finite
// in-memory byte sequences, not streams.
const maxUploadSize = 64 << 20

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// writeServiceError maps the internal error taxonomy onto HTTP statuses and
// caller-safe messages.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, common.ErrRefreshTokenExpired):
		writeError(w, http.StatusUnauthorized, "Refresh token expired")
	case errors.Is(err, common.ErrConfigNotFound):
		writeError(w, http.StatusNotFound, "AWS configuration not found")
	case errors.Is(err, common.ErrConfigIncomplete):
		writeError(w, http.StatusBadRequest, "AWS config is incomplete")
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, "Invalid AWS config")
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrDecode), errors.Is(err, common.ErrPayloadDecrypt):
		writeError(w, http.StatusInternalServerError, "Decryption failed")
	case errors.Is(err, common.ErrStorage):
		writeError(w, http.StatusBadGateway, "Storage operation failed")
	default:
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- auth ---

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		s.logger.Error(r.Context(), "register failed", "error", err.Error())
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userView{ID: user.ID, Email: user.Email, Name: user.Name})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairView struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairView{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairView{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// --- settings ---

// awsConfigView exposes the stored row. Secret fields carry ciphertext
// tokens, which are opaque; passing one back on save keeps it unchanged.
type awsConfigView struct {
	AccessKey        *string `json:"accessKey"`
	SecretKey        *string `json:"secretKey"`
	Region           *string `json:"region"`
	BucketName       *string `json:"bucketName"`
	EncryptionMethod string  `json:"encryptionMethod"`
	KMSKeyID         *string `json:"kmsKeyId"`
	CustomKey        *string `json:"customKey"`
}

func configView(cfg *models.AWSConfig) awsConfigView {
	return awsConfigView{
		AccessKey:        cfg.AccessKey,
		SecretKey:        cfg.SecretKey,
		Region:           cfg.Region,
		BucketName:       cfg.BucketName,
		EncryptionMethod: string(cfg.Method),
		KMSKeyID:         cfg.KMSKeyID,
		CustomKey:        cfg.CustomKey,
	}
}

func (s *Server) handleEnsureDefaultConfig(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cfg, err := s.settings.EnsureDefaultConfig(r.Context(), userID)
	if err != nil {
		s.logger.Error(r.Context(), "ensure default config failed", "error", err.Error())
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, configView(cfg))
}

type testConnectionRequest struct {
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	Region    string `json:"region"`
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	var req testConnectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.settings.TestConnection(r.Context(), req.AccessKey, req.SecretKey, req.Region); err != nil {
		writeError(w, http.StatusBadRequest, "Could not connect to AWS")
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

type saveCredentialsRequest struct {
	AccessKey  string `json:"accessKey"`
	SecretKey  string `json:"secretKey"`
	Region     string `json:"region"`
	BucketName string `json:"bucketName"`
}

func (s *Server) handleSaveCredentials(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req saveCredentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.settings.SaveCredentials(r.Context(), userID, req.AccessKey, req.SecretKey, req.Region, req.BucketName); err != nil {
		s.logger.Error(r.Context(), "save credentials failed", "error", err.Error())
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

// saveEncryptionMethodRequest uses pointers so an omitted secret can be
// distinguished from an empty one; omitted fields are cleared.
type saveEncryptionMethodRequest struct {
	EncryptionMethod string  `json:"encryptionMethod"`
	KMSKeyID         *string `json:"kmsKeyId"`
	CustomKey        *string `json:"customKey"`
}

func (s *Server) handleSaveEncryptionMethod(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req saveEncryptionMethodRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := s.settings.SaveEncryptionMethod(r.Context(), userID,
		models.EncryptionMethod(req.EncryptionMethod), req.KMSKeyID, req.CustomKey)
	if err != nil {
		s.logger.Error(r.Context(), "save encryption method failed", "error", err.Error())
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

// --- files ---

type uploadResponse struct {
	Key string `json:"key"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read file")
		return
	}
	if len(data) > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := s.files.Upload(r.Context(), userID, data, header.Filename, contentType)
	if err != nil {
		s.logger.Error(r.Context(), "upload failed", "error", err.Error())
		writeServiceError(w, err)
		return
	}

	s.metrics.AddUploadBytes(len(data))
	writeJSON(w, http.StatusCreated, uploadResponse{Key: key})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	items, err := s.files.List(r.Context(), userID)
	if err != nil {
		s.logger.Error(r.Context(), "list failed", "error", err.Error())
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	key := mux.Vars(r)["key"]

	data, fileName, err := s.files.Download(r.Context(), userID, key)
	if err != nil {
		s.logger.Error(r.Context(), "download failed", "error", err.Error())
		writeServiceError(w, err)
		return
	}

	s.metrics.AddDownloadBytes(len(data))

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

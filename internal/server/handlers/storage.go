package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gesturequiz/gesturequiz/internal/httperr"
	"github.com/gesturequiz/gesturequiz/internal/objectstore"
)

// ObjectStore is the storage surface the /api/storage endpoints need.
type ObjectStore interface {
	UploadFromURL(ctx context.Context, sourceURL, gestureType string) (*objectstore.UploadResult, error)
	SignedURL(ctx context.Context, s3URL string) (signedURL, key string, err error)
	Object(ctx context.Context, s3URL string) (data []byte, contentType string, err error)
}

// Storage serves the /api/storage endpoints.
type Storage struct {
	store        ObjectStore
	allowedHosts []string
	logger       *zap.Logger
}

// NewStorage returns the storage handlers. allowedHosts are the only hosts
// images may be fetched from for upload.
func NewStorage(store ObjectStore, allowedHosts []string, logger *zap.Logger) *Storage {
	return &Storage{store: store, allowedHosts: allowedHosts, logger: logger}
}

type uploadRequest struct {
	ImageURL    string `json:"imageUrl"`
	GestureType string `json:"gestureType"`
}

type uploadResponse struct {
	Success     bool   `json:"success"`
	S3URL       string `json:"s3Url"`
	S3Key       string `json:"s3Key"`
	Filename    string `json:"filename"`
	Size        int    `json:"size"`
	ContentType string `json:"contentType"`
}

// Upload fetches an image from an allow-listed source and persists it,
// returning a signed read URL.
func (h *Storage) Upload(w http.ResponseWriter, r *http.Request) error {
	var req uploadRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		return httperr.InvalidInput("imageUrl is required")
	}
	if err := h.validateSourceURL(req.ImageURL); err != nil {
		return err
	}

	result, err := h.store.UploadFromURL(r.Context(), req.ImageURL, req.GestureType)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}

	return writeJSON(w, http.StatusCreated, uploadResponse{
		Success:     true,
		S3URL:       result.SignedURL,
		S3Key:       result.S3Key,
		Filename:    result.Filename,
		Size:        result.Size,
		ContentType: result.ContentType,
	})
}

// validateSourceURL requires an absolute http(s) URL whose host is on the
// allow-list, exactly or as a subdomain.
func (h *Storage) validateSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return httperr.InvalidInput("Invalid image URL")
	}
	host := u.Hostname()
	for _, allowed := range h.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return httperr.InvalidInput("Image URL is not from an allowed source")
}

type signedURLRequest struct {
	S3URL string `json:"s3Url"`
}

type signedURLResponse struct {
	Success   bool   `json:"success"`
	SignedURL string `json:"signedUrl"`
	S3Key     string `json:"s3Key"`
	ExpiresIn int    `json:"expiresIn"`
}

// GetSignedURL exchanges a stored S3 URL for a time-limited read URL.
func (h *Storage) GetSignedURL(w http.ResponseWriter, r *http.Request) error {
	var req signedURLRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.S3URL) == "" {
		return httperr.InvalidInput("Missing required fields: s3Url")
	}

	signedURL, key, err := h.store.SignedURL(r.Context(), req.S3URL)
	if err != nil {
		return fmt.Errorf("sign url: %w", err)
	}

	return writeJSON(w, http.StatusOK, signedURLResponse{
		Success:   true,
		SignedURL: signedURL,
		S3Key:     key,
		ExpiresIn: int(objectstore.SignedURLTTL.Seconds()),
	})
}

// ProxyImage streams object bytes to the client with long-lived cache
// headers, for frontends that cannot follow signed URLs.
func (h *Storage) ProxyImage(w http.ResponseWriter, r *http.Request) error {
	s3URL := r.URL.Query().Get("s3Url")
	if s3URL == "" {
		return httperr.InvalidInput("Missing s3Url parameter")
	}

	data, contentType, err := h.store.Object(r.Context(), s3URL)
	if err != nil {
		return fmt.Errorf("proxy image: %w", err)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET")
	_, err = w.Write(data)
	return err
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gesturequiz/gesturequiz/internal/httperr"
	"github.com/gesturequiz/gesturequiz/internal/objectstore"
)

type stubObjectStore struct {
	uploadFn func(ctx context.Context, sourceURL, gestureType string) (*objectstore.UploadResult, error)
	signFn   func(ctx context.Context, s3URL string) (string, string, error)
	objectFn func(ctx context.Context, s3URL string) ([]byte, string, error)
}

func (s *stubObjectStore) UploadFromURL(ctx context.Context, sourceURL, gestureType string) (*objectstore.UploadResult, error) {
	return s.uploadFn(ctx, sourceURL, gestureType)
}

func (s *stubObjectStore) SignedURL(ctx context.Context, s3URL string) (string, string, error) {
	return s.signFn(ctx, s3URL)
}

func (s *stubObjectStore) Object(ctx context.Context, s3URL string) ([]byte, string, error) {
	return s.objectFn(ctx, s3URL)
}

var testAllowedHosts = []string{"oaidalleapiprodscus.blob.core.windows.net"}

func TestUploadRequiresImageURL(t *testing.T) {
	h := NewStorage(&stubObjectStore{}, testAllowedHosts, zap.NewNop())

	req := httptest.NewRequest("POST", "/api/storage/upload",
		bytes.NewBufferString(`{"gestureType":"wave"}`))
	err := h.Upload(httptest.NewRecorder(), req)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, httperr.KindInvalidInput, appErr.Kind)
}

func TestUploadRejectsDisallowedSource(t *testing.T) {
	h := NewStorage(&stubObjectStore{}, testAllowedHosts, zap.NewNop())

	cases := []string{
		"https://evil.example.com/image.png",
		"ftp://oaidalleapiprodscus.blob.core.windows.net/x.png",
		"https://oaidalleapiprodscus.blob.core.windows.net.evil.com/x.png",
		"not a url",
	}
	for _, src := range cases {
		body, err := json.Marshal(map[string]string{"imageUrl": src})
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/storage/upload", bytes.NewBuffer(body))
		uploadErr := h.Upload(httptest.NewRecorder(), req)

		var appErr *httperr.Error
		require.ErrorAs(t, uploadErr, &appErr, "source %s", src)
		require.Equal(t, httperr.KindInvalidInput, appErr.Kind, "source %s", src)
	}
}

func TestUploadAllowsListedHostAndSubdomains(t *testing.T) {
	st := &stubObjectStore{
		uploadFn: func(_ context.Context, sourceURL, gestureType string) (*objectstore.UploadResult, error) {
			require.Equal(t, "wave", gestureType)
			return &objectstore.UploadResult{
				SignedURL:   "https://bucket.s3.amazonaws.com/key.png?sig=abc",
				S3Key:       "20250810-124500-wave-deadbeef.png",
				Filename:    "20250810-124500-wave-deadbeef.png",
				Size:        2048,
				ContentType: "image/png",
			}, nil
		},
	}
	h := NewStorage(st, []string{"blob.core.windows.net"}, zap.NewNop())

	body := `{"imageUrl":"https://oaidalleapiprodscus.blob.core.windows.net/img.png","gestureType":"wave"}`
	req := httptest.NewRequest("POST", "/api/storage/upload", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	require.NoError(t, h.Upload(rec, req))

	require.Equal(t, 201, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "https://bucket.s3.amazonaws.com/key.png?sig=abc", resp.S3URL)
	require.Equal(t, "20250810-124500-wave-deadbeef.png", resp.S3Key)
	require.Equal(t, 2048, resp.Size)
}

func TestGetSignedURLRequiresS3URL(t *testing.T) {
	h := NewStorage(&stubObjectStore{}, testAllowedHosts, zap.NewNop())

	req := httptest.NewRequest("POST", "/api/storage/get-signed-url",
		bytes.NewBufferString(`{}`))
	err := h.GetSignedURL(httptest.NewRecorder(), req)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Missing required fields: s3Url", appErr.Msg)
}

func TestGetSignedURLReturnsKeyAndTTL(t *testing.T) {
	st := &stubObjectStore{
		signFn: func(_ context.Context, s3URL string) (string, string, error) {
			require.Equal(t, "https://bucket.s3.amazonaws.com/key.png", s3URL)
			return "https://bucket.s3.amazonaws.com/key.png?sig=abc", "key.png", nil
		},
	}
	h := NewStorage(st, testAllowedHosts, zap.NewNop())

	req := httptest.NewRequest("POST", "/api/storage/get-signed-url",
		bytes.NewBufferString(`{"s3Url":"https://bucket.s3.amazonaws.com/key.png"}`))
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetSignedURL(rec, req))

	var resp signedURLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "key.png", resp.S3Key)
	require.Equal(t, 604800, resp.ExpiresIn)
}

func TestGetSignedURLPropagatesBadKey(t *testing.T) {
	st := &stubObjectStore{
		signFn: func(context.Context, string) (string, string, error) {
			return "", "", httperr.InvalidInput("Invalid S3 URL format")
		},
	}
	h := NewStorage(st, testAllowedHosts, zap.NewNop())

	req := httptest.NewRequest("POST", "/api/storage/get-signed-url",
		bytes.NewBufferString(`{"s3Url":"https://elsewhere.example.com/key.png"}`))
	err := h.GetSignedURL(httptest.NewRecorder(), req)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, httperr.KindInvalidInput, appErr.Kind)
}

func TestProxyImageRequiresParameter(t *testing.T) {
	h := NewStorage(&stubObjectStore{}, testAllowedHosts, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/storage/proxy-image", nil)
	err := h.ProxyImage(httptest.NewRecorder(), req)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Missing s3Url parameter", appErr.Msg)
}

func TestProxyImageStreamsWithCacheHeaders(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	st := &stubObjectStore{
		objectFn: func(_ context.Context, s3URL string) ([]byte, string, error) {
			require.Equal(t, "https://bucket.s3.amazonaws.com/key.png", s3URL)
			return payload, "image/png", nil
		},
	}
	h := NewStorage(st, testAllowedHosts, zap.NewNop())

	req := httptest.NewRequest("GET",
		"/api/storage/proxy-image?s3Url=https%3A%2F%2Fbucket.s3.amazonaws.com%2Fkey.png", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ProxyImage(rec, req))

	require.Equal(t, 200, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.Equal(t, "8", rec.Header().Get("Content-Length"))
	require.Equal(t, "public, max-age=31536000", rec.Header().Get("Cache-Control"))
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, payload, rec.Body.Bytes())
}

func TestProxyImageMapsMissingObject(t *testing.T) {
	st := &stubObjectStore{
		objectFn: func(context.Context, string) ([]byte, string, error) {
			return nil, "", httperr.NotFound("Image not found")
		},
	}
	h := NewStorage(st, testAllowedHosts, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/storage/proxy-image?s3Url=https://b.s3.amazonaws.com/k.png", nil)
	err := h.ProxyImage(httptest.NewRecorder(), req)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, httperr.KindNotFound, appErr.Kind)
}

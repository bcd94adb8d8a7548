package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/dctsteg/pkg/fetch"
	"github.com/ssargent/dctsteg/pkg/imageio"
	"github.com/ssargent/dctsteg/pkg/stego"
)

func TestServer_handleHome(t *testing.T) {
	env := newTestEnv(t, testOptions{apiKey: testAPIKey})

	w := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var status StatusResponse
	resp := decodeBody(t, w, &status)
	assert.True(t, resp.Success)
	assert.Equal(t, "success", status.Status)
	assert.Equal(t, "API is running", status.Message)
}

func TestServer_handleHealth(t *testing.T) {
	env := newTestEnv(t, testOptions{apiKey: testAPIKey})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	w := env.do(req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var status StatusResponse
	resp := decodeBody(t, w, &status)
	if !resp.Success {
		t.Error("Expected success to be true")
	}
	if status.Status != "healthy" {
		t.Errorf("Expected status healthy, got %q", status.Status)
	}
}

func TestProtectedRoutesRequireKey(t *testing.T) {
	env := newTestEnv(t, testOptions{apiKey: testAPIKey})

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := multipartRequest(t, "/api/v1/decode", nil, pngBytes(t, carrierImage(16, 16)))
	req.Header.Set("X-API-Key", "nope")
	w = env.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid API key", decodeBody(t, w, nil).Error)
}

func TestEncodeDecodeMultipart(t *testing.T) {
	env := newTestEnv(t, testOptions{})
	carrier := pngBytes(t, carrierImage(64, 64))

	w := env.do(multipartRequest(t, "/api/v1/encode", map[string]string{"message": "hello api"}, carrier))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var encoded EncodeResponse
	require.True(t, decodeBody(t, w, &encoded).Success)
	assert.Equal(t, "png", encoded.Format)
	assert.Equal(t, 64, encoded.Width)
	assert.Equal(t, 64, encoded.Height)
	assert.Equal(t, 256, encoded.CapacityBits)
	assert.Equal(t, 22, encoded.MaxMessageChars)
	assert.Empty(t, encoded.ID)

	data, err := base64.StdEncoding.DecodeString(encoded.EncodedImage)
	require.NoError(t, err)

	w = env.do(multipartRequest(t, "/api/v1/decode", nil, data))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var decoded DecodeResponse
	decodeBody(t, w, &decoded)
	assert.Equal(t, "hello api", decoded.Message)
}

func TestEncodeDecodeJSON(t *testing.T) {
	env := newTestEnv(t, testOptions{})
	carrier := base64.StdEncoding.EncodeToString(pngBytes(t, carrierImage(64, 40)))

	w := env.do(jsonRequest(t, "/api/v1/encode", CarrierRequest{
		Image:   "data:image/png;base64," + carrier,
		Message: strPtr("json body"),
		Format:  "bmp",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var encoded EncodeResponse
	decodeBody(t, w, &encoded)
	assert.Equal(t, "bmp", encoded.Format)

	w = env.do(jsonRequest(t, "/api/v1/decode", CarrierRequest{Image: encoded.EncodedImage}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var decoded DecodeResponse
	decodeBody(t, w, &decoded)
	assert.Equal(t, "json body", decoded.Message)
}

func TestEncodeEmptyMessage(t *testing.T) {
	env := newTestEnv(t, testOptions{})

	w := env.do(multipartRequest(t, "/api/v1/encode", map[string]string{"message": ""}, pngBytes(t, carrierImage(64, 64))))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestEncodeValidation(t *testing.T) {
	env := newTestEnv(t, testOptions{})
	carrier := pngBytes(t, carrierImage(64, 64))

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing message",
			req:        multipartRequest(t, "/api/v1/encode", nil, carrier),
			wantStatus: http.StatusBadRequest,
			wantError:  "Image file and message are required",
		},
		{
			name:       "missing image",
			req:        multipartRequest(t, "/api/v1/encode", map[string]string{"message": "hi"}, nil),
			wantStatus: http.StatusBadRequest,
			wantError:  "Image file and message are required",
		},
		{
			name:       "message too long",
			req:        multipartRequest(t, "/api/v1/encode", map[string]string{"message": strings.Repeat("x", 23)}, carrier),
			wantStatus: http.StatusBadRequest,
			wantError:  "maximum length is 22 characters",
		},
		{
			name:       "not an image",
			req:        multipartRequest(t, "/api/v1/encode", map[string]string{"message": "hi"}, []byte("plain text")),
			wantStatus: http.StatusBadRequest,
			wantError:  "Unsupported or invalid image",
		},
		{
			name:       "image too small",
			req:        multipartRequest(t, "/api/v1/encode", map[string]string{"message": "hi"}, pngBytes(t, carrierImage(4, 4))),
			wantStatus: http.StatusBadRequest,
			wantError:  "maximum length is 0 characters",
		},
		{
			name:       "bad format",
			req:        multipartRequest(t, "/api/v1/encode", map[string]string{"message": "hi", "format": "jpeg"}, carrier),
			wantStatus: http.StatusBadRequest,
			wantError:  "unsupported output format",
		},
		{
			name:       "bad store flag",
			req:        multipartRequest(t, "/api/v1/encode", map[string]string{"message": "hi", "store": "maybe"}, carrier),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid store flag",
		},
		{
			name:       "store without storage",
			req:        multipartRequest(t, "/api/v1/encode", map[string]string{"message": "hi", "store": "true"}, carrier),
			wantStatus: http.StatusBadRequest,
			wantError:  "Image storage is disabled",
		},
		{
			name:       "invalid json",
			req:        httptest.NewRequest(http.MethodPost, "/api/v1/encode", strings.NewReader("{")),
			wantStatus: http.StatusBadRequest,
			wantError:  "Content-Type",
		},
		{
			name:       "unsupported content type",
			req:        withContentType(httptest.NewRequest(http.MethodPost, "/api/v1/encode", strings.NewReader("x")), "text/plain"),
			wantStatus: http.StatusBadRequest,
			wantError:  "Content-Type",
		},
		{
			name:       "malformed json",
			req:        withContentType(httptest.NewRequest(http.MethodPost, "/api/v1/encode", strings.NewReader("{")), "application/json"),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid JSON",
		},
		{
			name:       "url fetch disabled",
			req:        jsonRequest(t, "/api/v1/encode", CarrierRequest{ImageURL: "http://example.com/a.png", Message: strPtr("hi")}),
			wantStatus: http.StatusBadRequest,
			wantError:  "disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.req)
			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeBody(t, w, nil)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.wantError)
		})
	}
}

func withContentType(req *http.Request, ct string) *http.Request {
	req.Header.Set("Content-Type", ct)
	return req
}

func TestEncodeUploadTooLarge(t *testing.T) {
	env := newTestEnv(t, testOptions{maxUpload: 1024})

	// Noise does not compress, so the PNG is far larger than the limit.
	img := carrierImage(64, 64)
	seed := uint32(1)
	for i := range img.Pix {
		seed = seed*1664525 + 1013904223
		img.Pix[i] = uint8(seed >> 24)
	}

	w := env.do(multipartRequest(t, "/api/v1/encode", map[string]string{"message": "hi"}, pngBytes(t, img)))
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, w.Code)
}

func TestDecodeCleanImage(t *testing.T) {
	env := newTestEnv(t, testOptions{})

	w := env.do(multipartRequest(t, "/api/v1/decode", nil, pngBytes(t, carrierImage(64, 64))))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEmpty(t, decodeBody(t, w, nil).Error)
}

func TestDecodeMissingImage(t *testing.T) {
	env := newTestEnv(t, testOptions{})

	w := env.do(jsonRequest(t, "/api/v1/decode", CarrierRequest{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Image file is required", decodeBody(t, w, nil).Error)
}

func TestCapacity(t *testing.T) {
	env := newTestEnv(t, testOptions{})

	w := env.do(multipartRequest(t, "/api/v1/capacity", nil, pngBytes(t, carrierImage(61, 45))))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var capacity CapacityResponse
	decodeBody(t, w, &capacity)
	assert.Equal(t, 61, capacity.Width)
	assert.Equal(t, 45, capacity.Height)
	assert.Equal(t, "red", capacity.Channel)
	assert.Equal(t, 192, capacity.CapacityBits)
	assert.Equal(t, 14, capacity.MaxMessageChars)
}

func TestCapacityFromURL(t *testing.T) {
	carrier := pngBytes(t, carrierImage(64, 64))
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/carrier.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(carrier)
		default:
			http.NotFound(w, r)
		}
	}))
	defer remote.Close()

	env := newTestEnv(t, testOptions{fetcher: fetch.New(fetch.Options{Timeout: time.Second})})

	w := env.do(multipartRequest(t, "/api/v1/capacity", map[string]string{"image_url": remote.URL + "/carrier.png"}, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var capacity CapacityResponse
	decodeBody(t, w, &capacity)
	assert.Equal(t, 256, capacity.CapacityBits)

	w = env.do(jsonRequest(t, "/api/v1/capacity", CarrierRequest{ImageURL: remote.URL + "/missing.png"}))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = env.do(jsonRequest(t, "/api/v1/capacity", CarrierRequest{ImageURL: "file:///etc/passwd"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoredImageLifecycle(t *testing.T) {
	env := newTestEnv(t, testOptions{withStore: true})

	w := env.do(multipartRequest(t, "/api/v1/encode",
		map[string]string{"message": "keep me", "store": "true", "format": "tiff"},
		pngBytes(t, carrierImage(64, 64))))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var encoded EncodeResponse
	decodeBody(t, w, &encoded)
	require.NotEmpty(t, encoded.ID)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/images/"+encoded.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/tiff", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), encoded.ID+".tiff")

	want, err := base64.StdEncoding.DecodeString(encoded.EncodedImage)
	require.NoError(t, err)
	assert.Equal(t, want, w.Body.Bytes())

	// The stored bytes decode to the message.
	img, _, err := imageio.DecodeBytes(w.Body.Bytes())
	require.NoError(t, err)
	msg, err := env.server.codec.Decode(imageio.NewCarrier(img, imageio.Red).Grid())
	require.NoError(t, err)
	assert.Equal(t, "keep me", msg)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/images/"+encoded.ID, nil)
	w = env.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/images/"+encoded.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/images/not-an-id", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteImageNotFound(t *testing.T) {
	env := newTestEnv(t, testOptions{withStore: true})

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantError  string
	}{
		{"unknown id", "2HpJ3LA0ZfLNBhWB0mqJkhydwJX", http.StatusNotFound, "Image not found"},
		{"invalid id", "not-an-id", http.StatusBadRequest, "Invalid image id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/images/"+tt.id, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decodeBody(t, w, nil).Error)
		})
	}

	// A second delete of a stored image is a miss as well.
	w := env.do(multipartRequest(t, "/api/v1/encode",
		map[string]string{"message": "short lived", "store": "true"},
		pngBytes(t, carrierImage(64, 64))))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var encoded EncodeResponse
	decodeBody(t, w, &encoded)

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/images/"+encoded.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/images/"+encoded.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImagesWithoutStorage(t *testing.T) {
	env := newTestEnv(t, testOptions{})

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/images/2HpJ3LA0ZfLNBhWB0mqJkhydwJX", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Image storage is disabled", decodeBody(t, w, nil).Error)
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"request", badRequest("bad %s", "thing"), http.StatusBadRequest, "bad thing"},
		{"too long", &stego.MessageTooLongError{Length: 30, MaxLength: 22}, http.StatusBadRequest, "maximum length is 22 characters"},
		{"checksum", &stego.ChecksumMismatchError{Embedded: "aaaaaaaa", Computed: "bbbbbbbb"}, http.StatusUnprocessableEntity, "Message extraction failed - corruption detected"},
		{"wrapped checksum", fmt.Errorf("decode: %w", &stego.ChecksumMismatchError{}), http.StatusUnprocessableEntity, "corruption detected"},
		{"parse", &stego.FrameParseError{Reason: "checksum separator not found"}, http.StatusUnprocessableEntity, "separator"},
		{"insufficient", &stego.InsufficientDataError{Width: 4, Height: 4}, http.StatusBadRequest, "Image too small"},
		{"unstable", &stego.UnstableEmbeddingError{Reason: "clipped"}, http.StatusUnprocessableEntity, "clipped"},
		{"image", fmt.Errorf("%w: junk", imageio.ErrUnsupportedImage), http.StatusBadRequest, "Unsupported"},
		{"fetch url", fetch.ErrInvalidURL, http.StatusBadRequest, "invalid image URL"},
		{"fetch size", fetch.ErrTooLarge, http.StatusBadRequest, "too large"},
		{"fetch status", &fetch.StatusError{URL: "http://x", StatusCode: 503}, http.StatusBadGateway, "503"},
		{"max bytes", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "too large"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := errorResponse(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, msg, tt.wantMsg)
		})
	}
}

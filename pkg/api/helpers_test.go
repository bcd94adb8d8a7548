package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/dctsteg/pkg/fetch"
	"github.com/ssargent/dctsteg/pkg/imageio"
	"github.com/ssargent/dctsteg/pkg/stego"
	"github.com/ssargent/dctsteg/pkg/storage"
)

const testAPIKey = "test-key"

type testEnv struct {
	server  *Server
	handler http.Handler
	store   *storage.DefaultStorage
}

type testOptions struct {
	apiKey    string
	withStore bool
	fetcher   *fetch.Fetcher
	maxUpload int64
}

func newTestEnv(t *testing.T, opts testOptions) *testEnv {
	t.Helper()

	codec, err := stego.NewCodec(stego.DefaultParams(), true)
	require.NoError(t, err)

	env := &testEnv{}
	var store storage.ImageStore
	if opts.withStore {
		db, err := storage.Open(filepath.Join(t.TempDir(), "images"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		env.store = db
		store = db
	}

	config := ServerConfig{
		APIKey:         opts.apiKey,
		MaxUploadBytes: opts.maxUpload,
		Channel:        imageio.Red,
		OutputFormat:   imageio.PNG,
	}

	env.server = NewServer(codec, opts.fetcher, store, config, NewMetrics(prometheus.NewRegistry()))
	env.handler = NewRouter(env.server)
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// carrierImage returns a smooth RGB image that leaves the codec headroom on
// both sides of every sample.
func carrierImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(90 + x + y/2),
				G: uint8(120 + y),
				B: uint8(200 - x),
				A: 255,
			})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path string, fields map[string]string, imageData []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageData != nil {
		part, err := mw.CreateFormFile("image", "carrier.png")
		require.NoError(t, err)
		_, err = part.Write(imageData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, path string, payload interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeBody unmarshals an APIResponse and, when out is non-nil, its data field.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) APIResponse {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), "body: %s", w.Body.String())

	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return APIResponse{Success: raw.Success, Error: raw.Error}
}

func strPtr(s string) *string {
	return &s
}

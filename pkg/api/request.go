package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/ssargent/dctsteg/pkg/fetch"
	"github.com/ssargent/dctsteg/pkg/imageio"
)

// requestError is a client error with the status and message to report.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(format string, args ...interface{}) error {
	return &requestError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

// carrierInput is a parsed encode, decode or capacity request.
type carrierInput struct {
	image      image.Image
	message    string
	hasMessage bool
	format     string
	store      bool
}

// readCarrierInput accepts either a multipart form (image file or image_url,
// message, format, store) or a JSON CarrierRequest. The image is left nil
// when neither source was supplied.
func (s *Server) readCarrierInput(w http.ResponseWriter, r *http.Request) (*carrierInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, badRequest("Content-Type must be multipart/form-data or application/json")
	}

	switch mediaType {
	case "application/json":
		return s.readJSONInput(r)
	case "multipart/form-data":
		return s.readMultipartInput(r)
	}
	return nil, badRequest("Content-Type must be multipart/form-data or application/json")
}

func (s *Server) readJSONInput(r *http.Request) (*carrierInput, error) {
	var req CarrierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if tooLarge(err) {
			return nil, err
		}
		return nil, badRequest("Invalid JSON in request body")
	}

	in := &carrierInput{format: req.Format, store: req.Store}
	if req.Message != nil {
		in.message = *req.Message
		in.hasMessage = true
	}

	switch {
	case req.Image != "":
		img, _, err := imageio.DecodeBase64(req.Image)
		if err != nil {
			return nil, err
		}
		in.image = img
	case req.ImageURL != "":
		img, err := s.fetchImage(r, req.ImageURL)
		if err != nil {
			return nil, err
		}
		in.image = img
	}

	return in, nil
}

func (s *Server) readMultipartInput(r *http.Request) (*carrierInput, error) {
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		if tooLarge(err) {
			return nil, err
		}
		return nil, badRequest("Invalid multipart form: %v", err)
	}

	in := &carrierInput{format: r.FormValue("format")}
	if values, ok := r.MultipartForm.Value["message"]; ok && len(values) > 0 {
		in.message = values[0]
		in.hasMessage = true
	}
	if v := r.FormValue("store"); v != "" {
		store, err := strconv.ParseBool(v)
		if err != nil {
			return nil, badRequest("Invalid store flag %q", v)
		}
		in.store = store
	}

	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		img, _, err := imageio.Decode(file)
		if err != nil {
			return nil, err
		}
		in.image = img
	case errors.Is(err, http.ErrMissingFile):
		if u := strings.TrimSpace(r.FormValue("image_url")); u != "" {
			img, err := s.fetchImage(r, u)
			if err != nil {
				return nil, err
			}
			in.image = img
		}
	default:
		return nil, badRequest("Invalid image upload: %v", err)
	}

	return in, nil
}

func (s *Server) fetchImage(r *http.Request, rawURL string) (image.Image, error) {
	if s.fetcher == nil {
		return nil, badRequest("Fetching images by URL is disabled")
	}

	data, err := s.fetcher.Fetch(r.Context(), rawURL)
	if s.metrics != nil {
		s.metrics.RecordFetch(err == nil)
	}
	if err != nil {
		var statusErr *fetch.StatusError
		if errors.Is(err, fetch.ErrInvalidURL) || errors.Is(err, fetch.ErrTooLarge) || errors.As(err, &statusErr) {
			return nil, err
		}
		return nil, &requestError{status: http.StatusBadGateway, message: "Failed to fetch remote image"}
	}

	img, _, err := imageio.DecodeBytes(data)
	return img, err
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

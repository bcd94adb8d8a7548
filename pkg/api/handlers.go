package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/dctsteg/pkg/fetch"
	"github.com/ssargent/dctsteg/pkg/frame"
	"github.com/ssargent/dctsteg/pkg/imageio"
	"github.com/ssargent/dctsteg/pkg/stego"
	"github.com/ssargent/dctsteg/pkg/storage"
)

// Server holds the API server state
type Server struct {
	codec   *stego.Codec
	fetcher *fetch.Fetcher     // nil disables image_url
	store   storage.ImageStore // nil disables storing results
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(codec *stego.Codec, fetcher *fetch.Fetcher, store storage.ImageStore, config ServerConfig, metrics *Metrics) *Server {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 10 << 20
	}
	if config.OutputFormat == "" {
		config.OutputFormat = imageio.PNG
	}
	return &Server{
		codec:   codec,
		fetcher: fetcher,
		store:   store,
		config:  config,
		metrics: metrics,
	}
}

// handleHome reports that the API is up. It is unauthenticated.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, StatusResponse{Status: "success", Message: "API is running"})
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, StatusResponse{Status: "healthy"})
}

// handleEncode godoc
//
//	@Summary		Embed a message
//	@Description	Hide a message in one channel of an image and return the result as base64
//	@Tags			stego
//	@Accept			multipart/form-data,json
//	@Produce		json
//	@Param			image		formData	file	false	"Carrier image"
//	@Param			image_url	formData	string	false	"Carrier image URL"
//	@Param			message		formData	string	true	"Message to embed"
//	@Param			format		formData	string	false	"Output format: png, bmp or tiff"
//	@Param			store		formData	bool	false	"Keep the result for download"
//	@Success		200	{object}	EncodeResponse
//	@Failure		400	{object}	APIResponse
//	@Failure		422	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/encode [post]
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	in, err := s.readCarrierInput(w, r)
	if err != nil {
		s.fail(w, "encode", start, err)
		return
	}
	if in.image == nil || !in.hasMessage {
		s.fail(w, "encode", start, badRequest("Image file and message are required"))
		return
	}

	format := s.config.OutputFormat
	if in.format != "" {
		if format, err = imageio.ParseFormat(in.format); err != nil {
			s.fail(w, "encode", start, badRequest("%v", err))
			return
		}
	}
	if in.store && s.store == nil {
		s.fail(w, "encode", start, badRequest("Image storage is disabled"))
		return
	}

	carrier := imageio.NewCarrier(in.image, s.config.Channel)
	width, height := carrier.Size()
	if s.config.Debug {
		log.Printf("encode: %dx%d %s channel, capacity %d bits, message %d bytes",
			width, height, carrier.Channel(), s.codec.Capacity(height, width), len(in.message))
	}

	encoded, err := s.codec.Encode(carrier.Grid(), in.message)
	if err != nil {
		s.fail(w, "encode", start, err)
		return
	}

	img, err := carrier.Image(encoded)
	if err != nil {
		s.fail(w, "encode", start, err)
		return
	}
	data, err := imageio.EncodeBytes(img, format)
	if err != nil {
		s.fail(w, "encode", start, err)
		return
	}

	resp := EncodeResponse{
		EncodedImage:    base64.StdEncoding.EncodeToString(data),
		Format:          string(format),
		Width:           width,
		Height:          height,
		CapacityBits:    s.codec.Capacity(height, width),
		MaxMessageChars: s.codec.MaxMessageChars(height, width),
	}

	if in.store {
		id, err := s.store.Put(string(format), data)
		if s.metrics != nil {
			s.metrics.RecordStorageOperation("put", err == nil)
		}
		if err != nil {
			s.fail(w, "encode", start, err)
			return
		}
		resp.ID = id.String()
	}

	if s.metrics != nil {
		s.metrics.RecordCodecOperation("encode", statusSuccess, time.Since(start))
		s.metrics.RecordPayload(frame.RequiredBits(len(in.message)), width*height)
	}
	sendSuccess(w, resp)
}

// handleDecode godoc
//
//	@Summary		Extract a message
//	@Description	Recover the message hidden in an image
//	@Tags			stego
//	@Accept			multipart/form-data,json
//	@Produce		json
//	@Param			image		formData	file	false	"Encoded image"
//	@Param			image_url	formData	string	false	"Encoded image URL"
//	@Success		200	{object}	DecodeResponse
//	@Failure		400	{object}	APIResponse
//	@Failure		422	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/decode [post]
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	in, err := s.readCarrierInput(w, r)
	if err != nil {
		s.fail(w, "decode", start, err)
		return
	}
	if in.image == nil {
		s.fail(w, "decode", start, badRequest("Image file is required"))
		return
	}

	carrier := imageio.NewCarrier(in.image, s.config.Channel)
	if s.config.Debug {
		width, height := carrier.Size()
		log.Printf("decode: %dx%d %s channel, capacity %d bits",
			width, height, carrier.Channel(), s.codec.Capacity(height, width))
	}

	message, err := s.codec.Decode(carrier.Grid())
	if err != nil {
		s.fail(w, "decode", start, err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordCodecOperation("decode", statusSuccess, time.Since(start))
	}
	sendSuccess(w, DecodeResponse{Message: message})
}

// handleCapacity godoc
//
//	@Summary		Carrier capacity
//	@Description	Report how many bits and message characters an image can carry
//	@Tags			stego
//	@Accept			multipart/form-data,json
//	@Produce		json
//	@Param			image		formData	file	false	"Carrier image"
//	@Param			image_url	formData	string	false	"Carrier image URL"
//	@Success		200	{object}	CapacityResponse
//	@Failure		400	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/capacity [post]
func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	in, err := s.readCarrierInput(w, r)
	if err != nil {
		s.fail(w, "capacity", start, err)
		return
	}
	if in.image == nil {
		s.fail(w, "capacity", start, badRequest("Image file is required"))
		return
	}

	b := in.image.Bounds()
	width, height := b.Dx(), b.Dy()

	if s.metrics != nil {
		s.metrics.RecordCodecOperation("capacity", statusSuccess, time.Since(start))
	}
	sendSuccess(w, CapacityResponse{
		Width:           width,
		Height:          height,
		Channel:         s.config.Channel.String(),
		CapacityBits:    s.codec.Capacity(height, width),
		MaxMessageChars: s.codec.MaxMessageChars(height, width),
	})
}

// handleGetImage godoc
//
//	@Summary		Download a stored image
//	@Description	Return the bytes of an image stored by an encode call with store=true
//	@Tags			images
//	@Produce		png,bmp,tiff
//	@Param			id	path	string	true	"Image id"
//	@Success		200	{file}		binary
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/images/{id} [get]
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		sendError(w, "Image storage is disabled", http.StatusNotFound)
		return
	}

	id, err := storage.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid image id", http.StatusBadRequest)
		return
	}

	img, err := s.store.Get(id)
	if s.metrics != nil {
		s.metrics.RecordStorageOperation("get", err == nil || errors.Is(err, storage.ErrImageNotFound))
	}
	if errors.Is(err, storage.ErrImageNotFound) {
		sendError(w, "Image not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("failed to read image %s: %v", id, err)
		sendError(w, "Failed to read image", http.StatusInternalServerError)
		return
	}

	format := imageio.Format(img.Format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id.String()+format.Extension()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

// handleDeleteImage godoc
//
//	@Summary		Delete a stored image
//	@Tags			images
//	@Produce		json
//	@Param			id	path	string	true	"Image id"
//	@Success		200	{object}	map[string]string
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/images/{id} [delete]
func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		sendError(w, "Image storage is disabled", http.StatusNotFound)
		return
	}

	id, err := storage.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid image id", http.StatusBadRequest)
		return
	}

	// The store treats deleting an unknown id as a no-op; report it like GET does.
	_, err = s.store.Get(id)
	if errors.Is(err, storage.ErrImageNotFound) {
		if s.metrics != nil {
			s.metrics.RecordStorageOperation("delete", true)
		}
		sendError(w, "Image not found", http.StatusNotFound)
		return
	}
	if err == nil {
		err = s.store.Delete(id)
	}
	if s.metrics != nil {
		s.metrics.RecordStorageOperation("delete", err == nil)
	}
	if err != nil {
		log.Printf("failed to delete image %s: %v", id, err)
		sendError(w, "Failed to delete image", http.StatusInternalServerError)
		return
	}

	sendSuccess(w, map[string]string{"id": id.String(), "status": "deleted"})
}

// fail records the failed operation and writes the error response.
func (s *Server) fail(w http.ResponseWriter, operation string, start time.Time, err error) {
	status, message := errorResponse(err)

	if s.metrics != nil {
		label := statusError
		if stego.IsCorruption(err) {
			label = statusCorrupt
		}
		s.metrics.RecordCodecOperation(operation, label, time.Since(start))
	}
	if status == http.StatusInternalServerError {
		log.Printf("%s failed: %v", operation, err)
	} else if s.config.Debug {
		log.Printf("%s rejected: %v", operation, err)
	}

	sendError(w, message, status)
}

// errorResponse maps codec and collaborator errors to a status and a
// user-facing message.
func errorResponse(err error) (int, string) {
	var (
		reqErr       *requestError
		tooLong      *stego.MessageTooLongError
		checksum     *stego.ChecksumMismatchError
		parse        *stego.FrameParseError
		insufficient *stego.InsufficientDataError
		unstable     *stego.UnstableEmbeddingError
		fetchStatus  *fetch.StatusError
	)

	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.message
	case tooLarge(err):
		return http.StatusRequestEntityTooLarge, "Request body too large"
	case errors.As(err, &tooLong):
		return http.StatusBadRequest, fmt.Sprintf("Message too long: %d bytes, maximum length is %d characters", tooLong.Length, tooLong.MaxLength)
	case errors.As(err, &checksum):
		return http.StatusUnprocessableEntity, "Message extraction failed - corruption detected"
	case errors.As(err, &parse):
		return http.StatusUnprocessableEntity, "No embedded message found: " + parse.Reason
	case errors.As(err, &insufficient):
		return http.StatusBadRequest, "Image too small: " + insufficient.Error()
	case errors.As(err, &unstable):
		return http.StatusUnprocessableEntity, "Image cannot carry this message reliably: " + unstable.Reason
	case errors.Is(err, imageio.ErrUnsupportedImage):
		return http.StatusBadRequest, "Unsupported or invalid image"
	case errors.Is(err, fetch.ErrInvalidURL):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, fetch.ErrTooLarge):
		return http.StatusBadRequest, "Remote image too large"
	case errors.As(err, &fetchStatus):
		return http.StatusBadGateway, fmt.Sprintf("Remote image returned status %d", fetchStatus.StatusCode)
	}
	return http.StatusInternalServerError, "Internal server error"
}

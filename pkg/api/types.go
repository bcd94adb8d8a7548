package api

import (
	"time"

	"github.com/ssargent/dctsteg/pkg/imageio"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port            int
	Bind            string
	APIKey          string // empty disables authentication
	AllowedOrigins  []string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
	Channel         imageio.Channel
	OutputFormat    imageio.Format
	Debug           bool // log per-request codec details
}

// CarrierRequest is the JSON form of an encode, decode or capacity request.
// Exactly one of Image (base64, optionally a data URL) and ImageURL is used;
// Image wins when both are set.
type CarrierRequest struct {
	Image    string  `json:"image,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
	Message  *string `json:"message,omitempty"`
	Format   string  `json:"format,omitempty"`
	Store    bool    `json:"store,omitempty"`
}

// EncodeResponse is returned by the encode endpoint
type EncodeResponse struct {
	EncodedImage    string `json:"encoded_image"`
	Format          string `json:"format"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	CapacityBits    int    `json:"capacity_bits"`
	MaxMessageChars int    `json:"max_message_chars"`
	ID              string `json:"id,omitempty"`
}

// DecodeResponse is returned by the decode endpoint
type DecodeResponse struct {
	Message string `json:"message"`
}

// CapacityResponse is returned by the capacity endpoint
type CapacityResponse struct {
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Channel         string `json:"channel"`
	CapacityBits    int    `json:"capacity_bits"`
	MaxMessageChars int    `json:"max_message_chars"`
}

// StatusResponse is returned by the root and health endpoints
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

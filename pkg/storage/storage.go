// Package storage keeps encoded images in a pebble database keyed by KSUID,
// so API clients can download a result after the encode call returns.
package storage

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrInvalidID     = errors.New("invalid image id")
)

// Image is a stored encoded image.
type Image struct {
	ID     ksuid.KSUID
	Format string
	Data   []byte
}

// ImageStore is implemented by DefaultStorage and by test doubles.
type ImageStore interface {
	Put(format string, data []byte) (ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*Image, error)
	Delete(id ksuid.KSUID) error
	Close() error
}

type DefaultStorage struct {
	db *pebble.DB
}

// Open opens or creates the image database at path.
func Open(path string) (*DefaultStorage, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open image store at %s: %w", path, err)
	}
	return &DefaultStorage{db: db}, nil
}

// ParseID parses the string form of an image id.
func ParseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return id, nil
}

// Put stores data under a new id.
// The value layout is [len(format)][format][data].
func (s *DefaultStorage) Put(format string, data []byte) (ksuid.KSUID, error) {
	if len(format) == 0 || len(format) > 255 {
		return ksuid.Nil, fmt.Errorf("invalid format name %q", format)
	}

	value := make([]byte, 0, 1+len(format)+len(data))
	value = append(value, byte(len(format)))
	value = append(value, format...)
	value = append(value, data...)

	id := ksuid.New()
	if err := s.db.Set(id.Bytes(), value, pebble.NoSync); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to store image: %w", err)
	}
	return id, nil
}

// Get returns the image stored under id.
func (s *DefaultStorage) Get(id ksuid.KSUID) (*Image, error) {
	value, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", id, err)
	}
	defer closer.Close()

	if len(value) < 1 || len(value) < 1+int(value[0]) {
		return nil, fmt.Errorf("corrupt record for image %s", id)
	}
	n := int(value[0])

	// value is only valid until closer.Close.
	data := make([]byte, len(value)-1-n)
	copy(data, value[1+n:])

	return &Image{ID: id, Format: string(value[1 : 1+n]), Data: data}, nil
}

// Delete removes the image stored under id. Deleting an unknown id is not an error.
func (s *DefaultStorage) Delete(id ksuid.KSUID) error {
	return s.db.Delete(id.Bytes(), pebble.NoSync)
}

func (s *DefaultStorage) Close() error {
	return s.db.Close()
}

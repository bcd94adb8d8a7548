package imageio

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/ssargent/dctsteg/pkg/stego"
)

// ErrUnsupportedImage is returned when input bytes cannot be decoded as any
// registered image format.
var ErrUnsupportedImage = errors.New("unsupported or invalid image")

// Channel selects which color channel of an RGB image carries the message.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// ParseChannel accepts red, green or blue (or r, g, b), case-insensitive.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r", "":
		return Red, nil
	case "green", "g":
		return Green, nil
	case "blue", "b":
		return Blue, nil
	}
	return 0, fmt.Errorf("unknown channel %q: expected red, green or blue", s)
}

// Format is a lossless output container.
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// ParseFormat accepts png, bmp, tiff or tif, case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tiff", "tif":
		return TIFF, nil
	}
	return "", fmt.Errorf("unsupported output format %q: expected png, bmp or tiff", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	default:
		return "image/png"
	}
}

// Extension returns the file extension for f, with the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Decode reads an image in any registered format and returns it together with
// the format name reported by the decoder.
func Decode(r io.Reader) (image.Image, string, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, name, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (image.Image, string, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeBase64 decodes a base64 image, with or without a data URL prefix.
func DecodeBase64(s string) (image.Image, string, error) {
	data, err := base64Payload(s)
	if err != nil {
		return nil, "", err
	}
	return DecodeBytes(data)
}

func base64Payload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("%w: malformed data URL", ErrUnsupportedImage)
		}
		s = s[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrUnsupportedImage, err)
	}
	return data, nil
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("unsupported output format %q", string(f))
}

// EncodeBytes is Encode into a new buffer.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeBase64 encodes img in format f and returns it as standard base64.
func EncodeBase64(img image.Image, f Format) (string, error) {
	data, err := EncodeBytes(img, f)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Carrier holds a decoded image in an 8-bit, non-premultiplied form so one
// channel can be read and written back without loss. Grayscale sources stay
// grayscale and the gray level is the carrier channel. Images with alpha keep
// it, but fully transparent pixels may not survive every output format.
type Carrier struct {
	rgba    *image.NRGBA
	gray    *image.Gray
	channel Channel
}

// NewCarrier copies img into a Carrier exposing channel ch.
func NewCarrier(img image.Image, ch Channel) *Carrier {
	b := img.Bounds()
	rect := image.Rect(0, 0, b.Dx(), b.Dy())

	// Same-model sources are copied row by row: going through color.Color
	// premultiplies and would alter the channel of translucent pixels.
	switch src := img.(type) {
	case *image.NRGBA:
		rgba := image.NewNRGBA(rect)
		for y := 0; y < rect.Dy(); y++ {
			start := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(rgba.Pix[y*rgba.Stride:(y+1)*rgba.Stride], src.Pix[start:start+rect.Dx()*4])
		}
		return &Carrier{rgba: rgba, channel: ch}
	case *image.Gray:
		gray := image.NewGray(rect)
		for y := 0; y < rect.Dy(); y++ {
			start := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(gray.Pix[y*gray.Stride:(y+1)*gray.Stride], src.Pix[start:start+rect.Dx()])
		}
		return &Carrier{gray: gray, channel: ch}
	case *image.Gray16:
		gray := image.NewGray(rect)
		draw.Copy(gray, image.Point{}, src, b, draw.Src, nil)
		return &Carrier{gray: gray, channel: ch}
	}

	rgba := image.NewNRGBA(rect)
	draw.Copy(rgba, image.Point{}, img, b, draw.Src, nil)
	return &Carrier{rgba: rgba, channel: ch}
}

// Channel reports the channel the carrier exposes.
func (c *Carrier) Channel() Channel {
	return c.channel
}

// IsGray reports whether the source image was grayscale.
func (c *Carrier) IsGray() bool {
	return c.gray != nil
}

// Size returns the width and height of the image.
func (c *Carrier) Size() (width, height int) {
	r := c.image().Bounds()
	return r.Dx(), r.Dy()
}

func (c *Carrier) image() image.Image {
	if c.gray != nil {
		return c.gray
	}
	return c.rgba
}

// Grid returns the carrier channel as a stego grid.
func (c *Carrier) Grid() *stego.Grid {
	w, h := c.Size()
	g := stego.NewGrid(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, float64(c.sample(x, y)))
		}
	}
	return g
}

func (c *Carrier) sample(x, y int) uint8 {
	if c.gray != nil {
		return c.gray.Pix[y*c.gray.Stride+x]
	}
	return c.rgba.Pix[y*c.rgba.Stride+x*4+int(c.channel)]
}

// Image returns a copy of the carrier with its channel replaced by g. The
// other channels and alpha are untouched. g must match the carrier size.
func (c *Carrier) Image(g *stego.Grid) (image.Image, error) {
	w, h := c.Size()
	if g == nil || g.Width != w || g.Height != h {
		return nil, fmt.Errorf("grid does not match %dx%d image", w, h)
	}

	if c.gray != nil {
		out := image.NewGray(c.gray.Rect)
		copy(out.Pix, c.gray.Pix)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix[y*out.Stride+x] = toUint8(g.At(x, y))
			}
		}
		return out, nil
	}

	out := image.NewNRGBA(c.rgba.Rect)
	copy(out.Pix, c.rgba.Pix)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x*4+int(c.channel)] = toUint8(g.At(x, y))
		}
	}
	return out, nil
}

func toUint8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

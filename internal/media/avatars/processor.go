package avatars

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"path/filepath"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// maxAvatarBytes caps uploaded avatar size. Avatars are small profile
// pictures, 10MB is already generous.
const maxAvatarBytes = 10 << 20

// blurHashSize is the target size for BlurHash computation.
// BlurHash doesn't need high resolution - a small thumbnail produces nearly identical results.
// Using 64x64 reduces computation time from seconds to milliseconds.
const blurHashSize = 64

// Processor validates and stores uploaded avatar images.
type Processor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage *Storage, logger *slog.Logger) *Processor {
	return &Processor{
		storage: storage,
		logger:  logger,
	}
}

// Result holds the outcome of processing an avatar upload.
type Result struct {
	Path     string // Stored filename, {contactID}.jpg
	BlurHash string // Placeholder hash for progressive loading
	Hash     string // SHA256 of the stored bytes, for cache validation
}

// Process validates an uploaded avatar, stores it, and computes its
// BlurHash placeholder. The upload must decode as JPEG, PNG, GIF or WebP.
func (p *Processor) Process(contactID string, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("avatar data cannot be empty")
	}
	if len(data) > maxAvatarBytes {
		return nil, fmt.Errorf("avatar exceeds maximum size of %d bytes", maxAvatarBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}

	hash, err := computeBlurHash(img)
	if err != nil {
		return nil, fmt.Errorf("compute blurhash: %w", err)
	}

	if err := p.storage.Save(contactID, data); err != nil {
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	etag, err := p.storage.Hash(contactID)
	if err != nil {
		return nil, fmt.Errorf("hash avatar: %w", err)
	}

	p.logger.Debug("processed avatar",
		"contact_id", contactID,
		"format", format,
		"size", len(data),
		"blurhash", hash,
	)

	return &Result{
		Path:     filepath.Base(p.storage.Path(contactID)),
		BlurHash: hash,
		Hash:     etag,
	}, nil
}

// Remove deletes a contact's stored avatar, if any.
func (p *Processor) Remove(contactID string) error {
	return p.storage.Delete(contactID)
}

// Get retrieves a contact's stored avatar bytes.
func (p *Processor) Get(contactID string) ([]byte, error) {
	return p.storage.Get(contactID)
}

// Hash returns the SHA256 of a contact's stored avatar for cache validation.
func (p *Processor) Hash(contactID string) (string, error) {
	return p.storage.Hash(contactID)
}

// computeBlurHash generates a BlurHash string from a decoded image.
// Uses 4x3 components for a good balance of size (~20-30 chars) and detail.
// The image is resized to a small thumbnail first for performance.
func computeBlurHash(img image.Image) (string, error) {
	thumbnail := resizeForBlurHash(img)

	// 4 horizontal, 3 vertical components - plenty of detail for a face
	hash, err := blurhash.Encode(4, 3, thumbnail)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}

	return hash, nil
}

// resizeForBlurHash creates a small thumbnail suitable for BlurHash computation.
// Uses simple nearest-neighbor scaling which is fast and sufficient for BlurHash.
func resizeForBlurHash(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	// If image is already small enough, use it directly
	if srcWidth <= blurHashSize && srcHeight <= blurHashSize {
		return img
	}

	// Calculate target dimensions maintaining aspect ratio
	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = blurHashSize
		dstHeight = (srcHeight * blurHashSize) / srcWidth
		if dstHeight < 1 {
			dstHeight = 1
		}
	} else {
		dstHeight = blurHashSize
		dstWidth = (srcWidth * blurHashSize) / srcHeight
		if dstWidth < 1 {
			dstWidth = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))

	// Simple box scaling - fast and sufficient for BlurHash
	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}

	return dst
}

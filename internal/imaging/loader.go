package imaging

import (
	"image"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ironsheep/imgproc-mcp/internal/imgerr"
	"github.com/ironsheep/imgproc-mcp/internal/raster"
)

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// Images are decoded once with EXIF orientation applied, so a camera photo
// is processed the way it is displayed. Cached images remain in memory until
// Evict or Clear is called.
//
//	cache := imaging.NewImageCache()
//	buf, err := cache.LoadBuffer("/path/to/frame.png", false)
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
//
// Supported formats are those of github.com/disintegration/imaging: PNG,
// JPEG, GIF, BMP and TIFF. Different spellings of the same path are cached
// separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, imgerr.Wrap(imgerr.InvalidArgument, "imaging.Load", errors.Wrap(err, "failed to load image"))
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadBuffer loads the image at path as a raster buffer. With gray set the
// image is reduced to one 8-bit luminance channel; otherwise the channel
// layout follows raster.FromImage.
func (c *ImageCache) LoadBuffer(path string, gray bool) (*raster.Buffer, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	if gray {
		return Grayscale(img), nil
	}
	b := raster.FromImage(img)
	if b == nil {
		return nil, imgerr.New(imgerr.InvalidDimensions, "imaging.LoadBuffer", "image %s is empty", path)
	}
	return b, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes the image loaded under path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Channels and ElemType describe the buffer the image loads as.
	Channels int    `json:"channels"`
	ElemType string `json:"elem_type"`

	// Format is detected from the file extension: "png", "jpeg", "gif",
	// "bmp", "tiff" or "unknown".
	Format string `json:"format"`

	HasAlpha      bool  `json:"has_alpha"`
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat file")
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	info := &ImageInfo{
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}
	if b := raster.FromImage(img); b != nil {
		info.Channels = b.Channels()
		info.ElemType = b.Type().String()
		info.HasAlpha = b.Channels() == 4
	}
	return info, nil
}

// DimensionsResult contains the size of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	// Rows and Cols repeat Height and Width in buffer order.
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// GetDimensions returns the size of the image at path.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Rows:   bounds.Dy(),
		Cols:   bounds.Dx(),
	}, nil
}

package game

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"log"
	"path"
	"strings"
	"sync"

	internalaudio "github.com/decker502/reelspin/internal/audio"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder (线上版本的图集为 webp)
	"golang.org/x/sync/singleflight"
)

// ResourceManager is responsible for loading and caching spinner assets.
//
// The ResourceManager implements the following key features:
//   - Symbol sheet loading, pre-scaled from source cell size to display cell size
//   - Sound clip loading, decoded once into PCM at the audio context sample rate
//   - Caching by path, with concurrent loads of the same path collapsed into one
//
// Thread Safety Note:
// Engines load their assets on background goroutines, so every method is safe for
// concurrent use. Duplicate loads in flight are merged with singleflight.
//
// Usage:
//
//	rm := NewResourceManager(os.DirFS("."), 48000)
//	sheet, err := rm.LoadSymbolSheet("assets/images/sides.png", 6, 416, 220)
//	if err != nil {
//	    log.Printf("Failed to load symbol sheet: %v", err)
//	}
type ResourceManager struct {
	fsys       fs.FS
	sampleRate int

	mu         sync.RWMutex
	sheetCache map[string]*ebiten.Image // Cache for scaled symbol sheets: key -> Image
	clipCache  map[string][]byte        // Cache for decoded PCM clips: path -> bytes

	group singleflight.Group
}

// NewResourceManager creates a ResourceManager reading from fsys.
//
// Parameters:
//   - fsys: File system the asset paths are resolved against (e.g. os.DirFS(".")).
//   - sampleRate: Target sample rate for decoded clips; must match the audio context.
func NewResourceManager(fsys fs.FS, sampleRate int) *ResourceManager {
	return &ResourceManager{
		fsys:       fsys,
		sampleRate: sampleRate,
		sheetCache: make(map[string]*ebiten.Image),
		clipCache:  make(map[string][]byte),
	}
}

// normalizePath converts a config path into an fs.FS path.
func normalizePath(p string) string {
	return strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "./")
}

// LoadSymbolImage decodes a symbol sheet and scales it for display.
//
// The source sheet stacks `sides` square cells of `sideSize` px vertically. The result
// stacks the same cells at `displaySize` px, so drawing needs no further scaling.
//
// Parameters:
//   - p: Path of the sheet (PNG, JPEG or WebP).
//   - sides: Number of symbols in the sheet.
//   - sideSize: Source cell edge in pixels.
//   - displaySize: Display cell edge in pixels.
//
// Returns:
//   - image.Image: The scaled sheet (displaySize x displaySize*sides).
//   - error: If the file cannot be read or decoded, or is smaller than the declared cells.
func (rm *ResourceManager) LoadSymbolImage(p string, sides, sideSize, displaySize int) (image.Image, error) {
	p = normalizePath(p)

	file, err := rm.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open symbol sheet %s: %w", p, err)
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode symbol sheet %s: %w", p, err)
	}

	b := src.Bounds()
	if b.Dx() < sideSize || b.Dy() < sideSize*sides {
		return nil, fmt.Errorf("symbol sheet %s is %dx%d, need at least %dx%d for %d symbols",
			p, b.Dx(), b.Dy(), sideSize, sideSize*sides, sides)
	}

	dst := image.NewRGBA(image.Rect(0, 0, displaySize, displaySize*sides))
	for i := 0; i < sides; i++ {
		sr := image.Rect(b.Min.X, b.Min.Y+i*sideSize, b.Min.X+sideSize, b.Min.Y+(i+1)*sideSize)
		dr := image.Rect(0, i*displaySize, displaySize, (i+1)*displaySize)
		draw.CatmullRom.Scale(dst, dr, src, sr, draw.Src, nil)
	}
	return dst, nil
}

// LoadSymbolSheet loads a symbol sheet as an ebiten.Image and caches it.
// See LoadSymbolImage for the sheet layout.
func (rm *ResourceManager) LoadSymbolSheet(p string, sides, sideSize, displaySize int) (*ebiten.Image, error) {
	key := fmt.Sprintf("%s@%d/%d/%d", normalizePath(p), sides, sideSize, displaySize)

	rm.mu.RLock()
	cached, ok := rm.sheetCache[key]
	rm.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := rm.group.Do("sheet:"+key, func() (interface{}, error) {
		img, err := rm.LoadSymbolImage(p, sides, sideSize, displaySize)
		if err != nil {
			return nil, err
		}
		sheet := ebiten.NewImageFromImage(img)

		rm.mu.Lock()
		rm.sheetCache[key] = sheet
		rm.mu.Unlock()

		log.Printf("[ResourceManager] Loaded symbol sheet %s (%d symbols, %dpx)", p, sides, displaySize)
		return sheet, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ebiten.Image), nil
}

// LoadClip loads a sound clip and decodes it into stereo 16-bit PCM.
// The decoded bytes are cached and shared; callers must not modify them.
//
// Supported formats: MP3, OGG Vorbis, WAV and AU.
func (rm *ResourceManager) LoadClip(p string) ([]byte, error) {
	p = normalizePath(p)

	rm.mu.RLock()
	cached, ok := rm.clipCache[p]
	rm.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := rm.group.Do("clip:"+p, func() (interface{}, error) {
		data, err := fs.ReadFile(rm.fsys, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read sound clip %s: %w", p, err)
		}
		pcm, err := internalaudio.DecodeClip(p, data, rm.sampleRate)
		if err != nil {
			return nil, err
		}

		rm.mu.Lock()
		rm.clipCache[p] = pcm
		rm.mu.Unlock()

		log.Printf("[ResourceManager] Loaded sound clip %s (%d bytes PCM)", p, len(pcm))
		return pcm, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// SampleRate returns the sample rate clips are decoded to.
func (rm *ResourceManager) SampleRate() int {
	return rm.sampleRate
}

package nitf

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/cocosip/go-nitf-codec/tilecache"
)

// TileCache stores decoded blocks across GetTile calls. Implementations
// synchronize themselves; *tilecache.Cache[*CacheBlock] is one.
type TileCache interface {
	NewCache(rect image.Rectangle, blockSize image.Point) tilecache.Handle
	GetTile(h tilecache.Handle, origin image.Point) (*CacheBlock, bool)
	AddTile(h tilecache.Handle, origin image.Point, b *CacheBlock)
	DeleteCache(h tilecache.Handle)
}

// Options configures an open segment. A nil *Options means defaults.
type Options struct {
	// Cache keeps decoded blocks; nil decodes every touched block on
	// every call
	Cache TileCache

	// Logger receives debug records; nil discards them
	Logger *slog.Logger

	// StripRows splits an uncompressed single block image into strips of
	// this many rows so it is read and cached in pieces. 0 reads the
	// block whole.
	StripRows int
}

// Validate checks the options
func (o *Options) Validate() error {
	if o.StripRows < 0 {
		return fmt.Errorf("%w: strip rows %d", ErrConfig, o.StripRows)
	}
	return nil
}

// resolve validates o and fills in defaults
func (o *Options) resolve() (Options, error) {
	var out Options
	if o != nil {
		if err := o.Validate(); err != nil {
			return out, err
		}
		out = *o
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	return out, nil
}

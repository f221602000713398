// SPDX-License-Identifier: Unlicense OR MIT

package text

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/png"
	"sync"

	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/opentype/api"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/subrandr/subrandr/cache"
)

// Bitmap is a rasterized glyph, cached by GlyphID (§4.2: "rasterized
// glyph bitmaps are cached keyed by (glyph id, subpixel bucket)"). Color
// is set for glyphs backed by an embedded bitmap (e.g. emoji); those
// carry pre-multiplied BGRA pixels instead of a single alpha channel.
type Bitmap struct {
	// Coverage holds 8-bit alpha coverage for outline glyphs (Color ==
	// false), one byte per pixel, stride == Rect.Dx().
	Coverage []uint8
	// Color holds premultiplied BGRA for bitmap/color glyphs (Color ==
	// true), 4 bytes per pixel, stride == 4*Rect.Dx().
	Color  []uint8
	IsColor bool
	// Rect is the bitmap's extent relative to the glyph origin, in
	// whole pixels.
	Rect image.Rectangle
}

func (b Bitmap) size() int {
	return len(b.Coverage) + len(b.Color) + 64
}

// subpixelBucket is the X-axis subpixel quantization §4.2 specifies:
// glyph origins are snapped to quarter-pixel steps on X and whole
// pixels on Y, trading positioning precision for a 4x smaller cache.
type subpixelBucket uint8

func quantizeX(x fixed.Int26_6) (whole fixed.Int26_6, bucket subpixelBucket) {
	const step = fixed.Int26_6(64 / 4)
	frac := x & 63
	bucket = subpixelBucket(fixed.Int26_6(frac) / step)
	whole = x - fixed.Int26_6(frac) + fixed.Int26_6(bucket)*step
	return whole, bucket
}

type glyphKey struct {
	id     GlyphID
	bucket subpixelBucket
}

// GlyphCache rasterizes and caches glyph bitmaps, keyed on the GlyphID
// produced by Shaper plus the X subpixel bucket the glyph is positioned
// at. A Library owns one and shares it between all of its Renderers
// (§5); mu guards the underlying LRU so they may use it concurrently.
type GlyphCache struct {
	mu    sync.Mutex
	cache *cache.LRU[glyphKey, Bitmap]
	raw   *vector.Rasterizer
}

// NewGlyphCache creates a cache with the given soft capacity in bytes.
func NewGlyphCache(capacityBytes int) *GlyphCache {
	return &GlyphCache{
		cache: cache.New[glyphKey, Bitmap](capacityBytes, Bitmap.size),
	}
}

// Rasterize returns the bitmap for glyph id as shaped by face at ppem
// and positioned at pen x-position x, rasterizing and inserting it into
// the cache on a miss. It also returns x snapped down to its
// quarter-pixel subpixel bucket.
func (c *GlyphCache) Rasterize(face gofont.Face, ppem fixed.Int26_6, gid gofont.GID, id GlyphID, x fixed.Int26_6) (Bitmap, fixed.Int26_6) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snappedX, bucket := quantizeX(x)
	key := glyphKey{id: id, bucket: bucket}
	if bmp, ok := c.cache.Get(key); ok {
		return bmp, snappedX
	}

	bmp := rasterizeGlyph(face, ppem, gid, bucket)
	c.cache.Put(key, bmp)
	return bmp, snappedX
}

// Pin/Unpin/UnpinAll implement §4.2's per-frame pinning so glyphs looked
// up earlier in a frame survive later lookups in the same frame.
func (c *GlyphCache) Pin(id GlyphID, bucket uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Pin(glyphKey{id, subpixelBucket(bucket)})
}

func (c *GlyphCache) Unpin(id GlyphID, bucket uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Unpin(glyphKey{id, subpixelBucket(bucket)})
}

func (c *GlyphCache) UnpinAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.UnpinAll()
}

func rasterizeGlyph(face gofont.Face, ppem fixed.Int26_6, gid gofont.GID, bucket subpixelBucket) Bitmap {
	data := face.GlyphData(gid)
	switch g := data.(type) {
	case api.GlyphOutline:
		return rasterizeOutline(g, face.Upem(), ppem, bucket)
	case api.GlyphBitmap:
		return rasterizeEmbeddedBitmap(g)
	default:
		return Bitmap{}
	}
}

func rasterizeOutline(outline api.GlyphOutline, upem uint16, ppem fixed.Int26_6, bucket subpixelBucket) Bitmap {
	scale := fixedToFloat(ppem) / float32(upem)
	subpx := float32(bucket) / 4

	var minX, minY, maxX, maxY float32 = 1e9, 1e9, -1e9, -1e9
	transform := func(x, y float32) f32.Vec2 {
		tx, ty := x*scale+subpx, -y*scale
		if tx < minX {
			minX = tx
		}
		if ty < minY {
			minY = ty
		}
		if tx > maxX {
			maxX = tx
		}
		if ty > maxY {
			maxY = ty
		}
		return f32.Vec2{tx, ty}
	}
	for _, seg := range outline.Segments {
		n := segArgCount(seg.Op)
		for i := 0; i < n; i++ {
			transform(seg.Args[i].X, seg.Args[i].Y)
		}
	}
	if maxX < minX {
		return Bitmap{}
	}

	// Pad by one pixel so anti-aliased edges aren't clipped.
	originX, originY := int(minX)-1, int(minY)-1
	w, h := int(maxX)-originX+2, int(maxY)-originY+2
	if w <= 0 || h <= 0 {
		return Bitmap{}
	}

	z := vector.NewRasterizer(w, h)
	off := f32.Vec2{float32(-originX), float32(-originY)}
	var cur f32.Vec2
	apply := func(x, y float32) f32.Vec2 {
		v := f32.Vec2{x*scale + subpx, -y * scale}
		return f32.Vec2{v[0] + off[0], v[1] + off[1]}
	}
	for _, seg := range outline.Segments {
		switch seg.Op {
		case api.SegmentOpMoveTo:
			cur = apply(seg.Args[0].X, seg.Args[0].Y)
			z.MoveTo(cur[0], cur[1])
		case api.SegmentOpLineTo:
			cur = apply(seg.Args[0].X, seg.Args[0].Y)
			z.LineTo(cur[0], cur[1])
		case api.SegmentOpQuadTo:
			b := apply(seg.Args[0].X, seg.Args[0].Y)
			cur = apply(seg.Args[1].X, seg.Args[1].Y)
			z.QuadTo(b[0], b[1], cur[0], cur[1])
		case api.SegmentOpCubeTo:
			b := apply(seg.Args[0].X, seg.Args[0].Y)
			c := apply(seg.Args[1].X, seg.Args[1].Y)
			cur = apply(seg.Args[2].X, seg.Args[2].Y)
			z.CubeTo(b[0], b[1], c[0], c[1], cur[0], cur[1])
		}
	}
	z.ClosePath()

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})

	return Bitmap{
		Coverage: dst.Pix,
		Rect:     image.Rect(originX, originY, originX+w, originY+h),
	}
}

func segArgCount(op api.SegmentOp) int {
	switch op {
	case api.SegmentOpQuadTo:
		return 2
	case api.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}

// rasterizeEmbeddedBitmap decodes a font-embedded color bitmap (emoji
// glyphs) into premultiplied BGRA. Only PNG is supported: this file
// registers the PNG decoder, and subrandr does not register the
// JPEG/TIFF decoders the teacher warns about in
// font/opentype/opentype.go's doc comment, since the corpus of subtitle
// fonts exercising this path uses PNG exclusively.
func rasterizeEmbeddedBitmap(g api.GlyphBitmap) Bitmap {
	if g.Format != api.PNG {
		return Bitmap{}
	}
	img, _, err := image.Decode(bytes.NewReader(g.Data))
	if err != nil {
		return Bitmap{}
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	premultiplyBGRA(dst.Pix)
	return Bitmap{
		Color:   dst.Pix,
		IsColor: true,
		Rect:    image.Rect(0, 0, b.Dx(), b.Dy()),
	}
}

// premultiplyBGRA converts image.RGBA's straight-alpha RGBA byte order
// in place to premultiplied BGRA, the buffer format §4.5 specifies for
// compositing.
func premultiplyBGRA(pix []uint8) {
	for i := 0; i < len(pix); i += 4 {
		r, g, b, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		pm := func(c uint8) uint8 { return uint8(uint32(c) * uint32(a) / 255) }
		pix[i], pix[i+1], pix[i+2], pix[i+3] = pm(b), pm(g), pm(r), a
	}
}

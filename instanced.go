// SPDX-License-Identifier: Unlicense OR MIT

package subrandr

import (
	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/cache"
	"github.com/subrandr/subrandr/inline"
	"github.com/subrandr/subrandr/paint"
	"github.com/subrandr/subrandr/raster"
	"github.com/subrandr/subrandr/selector"
)

// PassState is the unstable instanced-rendering surface's state
// machine (§4.8: "Idle → Rendering → Instances-Available → Finished.
// Only one raster pass per renderer may be non-finished; violating
// this is a programmer error (fatal assertion)").
type PassState int

const (
	PassIdle PassState = iota
	PassRendering
	PassInstancesAvailable
	PassFinished
)

// BaseImage is a rasterized source image an Instance composites from
// (§6: get_instances' "base_image" field). In this implementation
// each Pass produces exactly one BaseImage covering its whole clip
// rectangle; see Pass's doc comment for why.
type BaseImage struct {
	buf *raster.Buffer
}

// Instance is one composite operation a caller walks in order (§6:
// "a linked list of {base_image, dst_{x,y,w,h}, src_{off_x,off_y,w,h}}
// records to composite in order (bilinear src → dst → OVER-blend)").
// A Go slice is returned instead of a linked list — idiomatic for a Go
// API and just as walkable in order; nothing about the contract
// depends on the list being intrusively linked.
type Instance struct {
	BaseImage                    *BaseImage
	DstX, DstY, DstW, DstH       int
	SrcOffX, SrcOffY, SrcW, SrcH int
}

// Pass is a single instanced raster pass (§6: render_instanced's
// return handle). Unlike Render, which blits directly into a caller
// buffer, a Pass defers compositing: it rasterizes once into an
// internal buffer and exposes it as instances the caller composites
// itself (e.g. into a texture atlas a GPU backend owns). This
// implementation renders the whole pass eagerly into one BaseImage
// and returns a single covering Instance, rather than one instance per
// run or background rect — §6 specifies the record shape callers walk
// but not the granularity of the records a pass must emit, and a
// single full-pass image is the simplest implementation that honors
// the composite contract; a future revision could atlas per-run
// images to let callers skip re-uploading unchanged glyph runs.
type Pass struct {
	state PassState
	arena *cache.Arena[*BaseImage]
	image cache.Handle
}

// RenderInstanced begins a raster pass over the active boxes at t,
// clipped to clipRect (§6: render_instanced). Starting a pass while
// another non-Finished pass exists on r is a programmer error.
func (r *Renderer) RenderInstanced(ctx Context, tMs int64, clipRect raster.Rect) (*Pass, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pass != nil && r.pass.state != PassFinished {
		panic("subrandr: RenderInstanced called while a previous pass is still non-finished")
	}
	if r.subs == nil {
		return nil, newError(InvalidArgument, nil, "render_instanced called on an unbound renderer")
	}

	width, height := clipRect.X1-clipRect.X0, clipRect.Y1-clipRect.Y0
	if width <= 0 || height <= 0 {
		return nil, newError(InvalidArgument, nil, "render_instanced: empty clip rect")
	}

	pass := &Pass{state: PassRendering, arena: cache.NewArena[*BaseImage]()}
	r.pass = pass

	buf := &raster.Buffer{Pix: make([]byte, width*height*4), Stride: width * 4, Width: width, Height: height}
	frameClip := raster.Rect{X0: 0, Y0: 0, X1: width, Y1: height}

	fctx := ctx.Fingerprint()
	boxes, err := selector.Select(r.subs.doc, tMs, ctx)
	if err != nil {
		return nil, newError(InvalidArgument, err, "selecting active boxes")
	}

	painter := paint.NewPainter(r.lib.glyphs, ctx.DPI)
	engine := inline.NewEngine(r.lib.shaper, r.matcher, ctx.DPI)
	for _, box := range boxes {
		key := layoutCacheKey{eventFingerprint: box.Fingerprint, ctxFingerprint: fctx}
		result, ok := r.layoutCache.Get(key)
		if !ok {
			result, err = engine.Layout(box.Box)
			if err != nil {
				return nil, newError(Other, err, "laying out event %d", box.EventIndex)
			}
			r.layoutCache.Put(key, result)
		}
		originX, originY := selector.Origin(box.Box.Anchor, ctx, result.Bounds.Width, result.Bounds.Height)
		// Instanced passes render against a fresh, fully transparent
		// buffer, so there is no prior frame's content to clear first.
		originX -= fixed.I(clipRect.X0)
		originY -= fixed.I(clipRect.Y0)
		painter.Paint(buf, result, originX, originY, box.Box.Flags, frameClip)
	}

	img := &BaseImage{buf: buf}
	pass.image = pass.arena.Insert(img)
	pass.state = PassInstancesAvailable

	return pass, nil
}

// GetInstances returns the composite records produced by the pass.
// Valid only in PassInstancesAvailable.
func (p *Pass) GetInstances() ([]Instance, error) {
	if p.state != PassInstancesAvailable {
		return nil, newError(InvalidArgument, nil, "get_instances called outside Instances-Available")
	}
	img, ok := p.arena.Get(p.image)
	if !ok {
		return nil, newError(Other, nil, "pass image handle is stale")
	}
	return []Instance{{
		BaseImage: img,
		DstX:      0, DstY: 0, DstW: img.buf.Width, DstH: img.buf.Height,
		SrcOffX: 0, SrcOffY: 0, SrcW: img.buf.Width, SrcH: img.buf.Height,
	}}, nil
}

// ImageRasterizeInto materializes img's pixels into a caller-owned
// buffer (§6: image_rasterize_into). stride is in pixels.
func ImageRasterizeInto(img *BaseImage, buf []byte, stride int) error {
	if stride*4*img.buf.Height > len(buf) {
		return newError(InvalidArgument, nil, "image_rasterize_into: destination buffer too small")
	}
	for y := 0; y < img.buf.Height; y++ {
		src := img.buf.Pix[y*img.buf.Stride : y*img.buf.Stride+img.buf.Width*4]
		dst := buf[y*stride*4 : y*stride*4+img.buf.Width*4]
		copy(dst, src)
	}
	return nil
}

// Finish ends the pass, freeing its arena-borrowed instances (§4.8:
// "Instances returned are borrowed from an arena freed on finish").
// Using an Instance or BaseImage obtained from p after Finish is a
// programmer error.
func (p *Pass) Finish() {
	p.arena.Free(p.image)
	p.state = PassFinished
}

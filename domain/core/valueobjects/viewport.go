package valueobjects

import (
	"github.com/zach-sndr/twitcanva/domain/config"
)

// Viewport is a value object holding the pan/zoom state of the canvas:
// a translation offset and a scale factor applied to the content layer.
// All conversions follow canvas = (screen - offset) / zoom.
type Viewport struct {
	x    float64
	y    float64
	zoom float64

	minZoom float64
	maxZoom float64
}

// NewViewport creates an identity viewport with zoom bounds taken from
// the domain configuration
func NewViewport(cfg *config.DomainConfig) Viewport {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return Viewport{
		zoom:    1,
		minZoom: cfg.MinZoom,
		maxZoom: cfg.MaxZoom,
	}
}

// ReconstructViewport recreates a viewport from persisted values,
// clamping zoom back into the configured range
func ReconstructViewport(x, y, zoom float64, cfg *config.DomainConfig) Viewport {
	v := NewViewport(cfg)
	if !isFinite(x) || !isFinite(y) || !isFinite(zoom) {
		return v
	}
	v.x = x
	v.y = y
	v.zoom = v.clampZoom(zoom)
	return v
}

// X returns the horizontal translation offset
func (v Viewport) X() float64 { return v.x }

// Y returns the vertical translation offset
func (v Viewport) Y() float64 { return v.y }

// Zoom returns the scale factor
func (v Viewport) Zoom() float64 { return v.zoom }

// Pan translates the viewport by a screen-space delta
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.x += dx
	v.y += dy
	return v
}

// ZoomAt scales the viewport by factor anchored at the given screen
// point: the canvas point under the cursor stays fixed, so the offset is
// recomputed on every step, not just the scale.
func (v Viewport) ZoomAt(screen Point, factor float64) Viewport {
	newZoom := v.clampZoom(v.zoom * factor)
	if newZoom == v.zoom {
		return v
	}

	anchor := v.ScreenToCanvas(screen)
	v.x = screen.X() - anchor.X()*newZoom
	v.y = screen.Y() - anchor.Y()*newZoom
	v.zoom = newZoom
	return v
}

// ScreenToCanvas converts a screen-space point into canvas space
func (v Viewport) ScreenToCanvas(p Point) Point {
	return Point{
		x: (p.x - v.x) / v.zoom,
		y: (p.y - v.y) / v.zoom,
	}
}

// CanvasToScreen converts a canvas-space point into screen space
func (v Viewport) CanvasToScreen(p Point) Point {
	return Point{
		x: p.x*v.zoom + v.x,
		y: p.y*v.zoom + v.y,
	}
}

// ScreenRectToCanvas converts a screen-space rectangle into canvas space
func (v Viewport) ScreenRectToCanvas(r Rect) Rect {
	return NewRect(
		v.ScreenToCanvas(Point{x: r.minX, y: r.minY}),
		v.ScreenToCanvas(Point{x: r.maxX, y: r.maxY}),
	)
}

func (v Viewport) clampZoom(zoom float64) float64 {
	if zoom < v.minZoom {
		return v.minZoom
	}
	if zoom > v.maxZoom {
		return v.maxZoom
	}
	return zoom
}

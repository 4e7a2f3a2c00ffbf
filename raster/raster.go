// Package raster holds rendered thumbnails and the pixel operations used to
// frame them: tight cropping and height normalization.
package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"golang.org/x/image/draw"
)

// TargetHeight is the fixed height of every thumbnail in pixels.
const TargetHeight = 128

// Raster is an immutable RGBA thumbnail.
type Raster struct {
	img *image.RGBA
}

// New wraps img. The caller must not modify img afterwards.
func New(img *image.RGBA) *Raster {
	return &Raster{img: img}
}

// Blank 返回宽 1、高 TargetHeight 的透明图，用于空白渲染结果。
func Blank() *Raster {
	return New(image.NewRGBA(image.Rect(0, 0, 1, TargetHeight)))
}

func (r *Raster) Width() int  { return r.img.Bounds().Dx() }
func (r *Raster) Height() int { return r.img.Bounds().Dy() }

// Image returns the underlying pixels; treat them as read-only.
func (r *Raster) Image() *image.RGBA { return r.img }

// PNG encodes the raster losslessly with its alpha channel.
func (r *Raster) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI returns the PNG encoding as a data: URI.
func (r *Raster) DataURI() (string, error) {
	data, err := r.PNG()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// TightCrop returns the smallest rectangle enclosing every pixel with
// non-zero alpha. It is empty if the image is fully transparent.
func TightCrop(img *image.RGBA) image.Rectangle {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Min.X, y)+4*b.Dx()]
		for i := 3; i < len(row); i += 4 {
			if row[i] == 0 {
				continue
			}
			x := b.Min.X + i/4
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX || maxY < minY {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Normalize scales the crop region of img to TargetHeight, preserving the
// aspect ratio. An empty crop yields Blank.
func Normalize(img *image.RGBA, crop image.Rectangle) *Raster {
	crop = crop.Intersect(img.Bounds())
	if crop.Empty() {
		return Blank()
	}
	w := int(math.Round(float64(crop.Dx()) * TargetHeight / float64(crop.Dy())))
	if w < 1 {
		w = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, TargetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)
	return New(dst)
}

// Frame crops img to its inked pixels and normalizes the result.
func Frame(img *image.RGBA) *Raster {
	return Normalize(img, TightCrop(img))
}

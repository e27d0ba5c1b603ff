package avatar

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported image")

// Fit 决定图片如何放进正方形画布
type Fit string

const (
	FitCover Fit = "cover" // 等比放大到铺满，居中裁掉多余部分
	FitPad   Fit = "pad"   // 等比缩放到完全放下，居中并用白色补边
)

const (
	DefaultSize   = 250
	jpegQuality   = 90
	cropTolerance = 8 // autocrop 时与边框颜色的最大通道差
	// 解码前按头信息限制像素数，压缩率高的小文件也可能声明巨大尺寸
	MaxPixels = 40_000_000
)

type Processor struct {
	size int
	fit  Fit
}

func NewProcessor(size int, fit string) *Processor {
	if size <= 0 {
		size = DefaultSize
	}
	f := Fit(fit)
	if f != FitPad {
		f = FitCover
	}
	return &Processor{size: size, fit: f}
}

// Normalize 读取 path 处的图片，裁掉纯色边框后缩放到 size×size，并覆盖写回 path。
// 返回写入的 Content-Type，png 保持 png，其余格式统一输出 jpeg。
func (p *Processor) Normalize(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds pixel limit", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	src, format, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	f.Close()

	img := autocrop(src)

	var dst *image.RGBA
	if p.fit == FitPad {
		dst = pad(img, p.size)
	} else {
		dst = cover(img, p.size)
	}

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if format == "png" {
		if err := png.Encode(out, dst); err != nil {
			return "", fmt.Errorf("failed to encode PNG: %w", err)
		}
		return "image/png", nil
	}

	if err := jpeg.Encode(out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return "image/jpeg", nil
}

// autocrop 以左上角像素颜色为边框色，只有四边都存在边框时才裁剪
func autocrop(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return img
	}

	border := img.At(b.Min.X, b.Min.Y)
	isBorder := func(x, y int) bool {
		return similar(img.At(x, y), border)
	}

	top := b.Min.Y
	for top < b.Max.Y && rowIs(b, top, isBorder) {
		top++
	}
	if top == b.Max.Y {
		// 整张图都是同一种颜色
		return img
	}
	bottom := b.Max.Y - 1
	for bottom > top && rowIs(b, bottom, isBorder) {
		bottom--
	}
	left := b.Min.X
	for left < b.Max.X && colIs(b, left, top, bottom, isBorder) {
		left++
	}
	right := b.Max.X - 1
	for right > left && colIs(b, right, top, bottom, isBorder) {
		right--
	}

	if top == b.Min.Y || left == b.Min.X || bottom == b.Max.Y-1 || right == b.Max.X-1 {
		return img
	}

	rect := image.Rect(left, top, right+1, bottom+1)
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

func rowIs(b image.Rectangle, y int, pred func(x, y int) bool) bool {
	for x := b.Min.X; x < b.Max.X; x++ {
		if !pred(x, y) {
			return false
		}
	}
	return true
}

func colIs(b image.Rectangle, x, top, bottom int, pred func(x, y int) bool) bool {
	for y := top; y <= bottom; y++ {
		if !pred(x, y) {
			return false
		}
	}
	return true
}

func similar(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return diff8(ar, br) <= cropTolerance && diff8(ag, bg) <= cropTolerance &&
		diff8(ab, bb) <= cropTolerance && diff8(aa, ba) <= cropTolerance
}

func diff8(a, b uint32) uint32 {
	a, b = a>>8, b>>8
	if a > b {
		return a - b
	}
	return b - a
}

func cover(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	// 取居中的最大正方形区域
	sr := b
	if w > h {
		x0 := b.Min.X + (w-h)/2
		sr = image.Rect(x0, b.Min.Y, x0+h, b.Max.Y)
	} else if h > w {
		y0 := b.Min.Y + (h-w)/2
		sr = image.Rect(b.Min.X, y0, b.Max.X, y0+w)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, sr, draw.Src, nil)
	return dst
}

func pad(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	nw, nh := size, size
	if w > h {
		nh = max(1, h*size/w)
	} else if h > w {
		nw = max(1, w*size/h)
	}
	x0 := (size - nw) / 2
	y0 := (size - nh) / 2

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+nw, y0+nh), img, b, draw.Over, nil)
	return dst
}

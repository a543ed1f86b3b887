package image

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
)

// 图像预处理接口
type ImagePreprocessor interface {
	Process(img image.Image) (image.Image, error)
}

// Pipeline applies preprocessors in order.
type Pipeline struct {
	steps []ImagePreprocessor
}

func NewPipeline(steps ...ImagePreprocessor) *Pipeline {
	return &Pipeline{steps: steps}
}

// DefaultPipeline: grayscale, 3x3 gaussian blur, CLAHE (clip 2.0, 8x8 tiles),
// adaptive gaussian threshold (block 11, C 2).
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		NewGrayscaleProcessor(),
		NewGaussianBlurProcessor(),
		NewCLAHEProcessor(2.0, 8),
		NewAdaptiveThresholdProcessor(11, 2),
	)
}

func (p *Pipeline) Process(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	var err error
	result := img
	for _, step := range p.steps {
		result, err = step.Process(result)
		if err != nil {
			return nil, fmt.Errorf("preprocessing failed: %w", err)
		}
		if result == nil {
			return nil, errors.New("preprocessor returned nil image")
		}
	}
	return result, nil
}

// 灰度处理器
// Single-channel input is passed through unchanged.
type GrayscaleProcessor struct{}

func NewGrayscaleProcessor() *GrayscaleProcessor {
	return &GrayscaleProcessor{}
}

func (p *GrayscaleProcessor) Process(img image.Image) (image.Image, error) {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return toGray(img), nil
	}
	return toGray(imaging.Grayscale(img)), nil
}

// 高斯模糊 (3x3)
type GaussianBlurProcessor struct {
	kernel [9]float64
}

func NewGaussianBlurProcessor() *GaussianBlurProcessor {
	return &GaussianBlurProcessor{kernel: [9]float64{
		1, 2, 1,
		2, 4, 2,
		1, 2, 1,
	}}
}

func (p *GaussianBlurProcessor) Process(img image.Image) (image.Image, error) {
	blurred := imaging.Convolve3x3(img, p.kernel, &imaging.ConvolveOptions{Normalize: true})
	return toGray(blurred), nil
}

// CLAHEProcessor 限制对比度自适应直方图均衡
type CLAHEProcessor struct {
	clipLimit float64
	grid      int
}

func NewCLAHEProcessor(clipLimit float64, grid int) *CLAHEProcessor {
	if grid <= 0 {
		grid = 8
	}
	return &CLAHEProcessor{clipLimit: clipLimit, grid: grid}
}

func (p *CLAHEProcessor) Process(img image.Image) (image.Image, error) {
	src := toGray(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return src, nil
	}

	gx, gy := min(p.grid, w), min(p.grid, h)
	tileW, tileH := ceilDiv(w, gx), ceilDiv(h, gy)
	gx, gy = ceilDiv(w, tileW), ceilDiv(h, tileH)

	luts := make([][256]uint8, gx*gy)
	for ty := 0; ty < gy; ty++ {
		for tx := 0; tx < gx; tx++ {
			r := image.Rect(tx*tileW, ty*tileH, min((tx+1)*tileW, w), min((ty+1)*tileH, h))
			luts[ty*gx+tx] = p.tileLUT(src, r)
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty1, wy := split(fy, gy)
		ty2 := min(ty1+1, gy-1)
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx1, wx := split(fx, gx)
			tx2 := min(tx1+1, gx-1)

			v := src.Pix[y*src.Stride+x]
			top := (1-wx)*float64(luts[ty1*gx+tx1][v]) + wx*float64(luts[ty1*gx+tx2][v])
			bottom := (1-wx)*float64(luts[ty2*gx+tx1][v]) + wx*float64(luts[ty2*gx+tx2][v])
			dst.Pix[y*dst.Stride+x] = clampByte((1-wy)*top + wy*bottom)
		}
	}
	return dst, nil
}

// tileLUT builds the clipped, redistributed equalization map of one tile.
func (p *CLAHEProcessor) tileLUT(src *image.Gray, r image.Rectangle) [256]uint8 {
	var hist [256]int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+src.Rect.Dx()]
		for x := r.Min.X; x < r.Max.X; x++ {
			hist[row[x]]++
		}
	}
	area := r.Dx() * r.Dy()

	if p.clipLimit > 0 {
		limit := max(int(p.clipLimit*float64(area)/256), 1)
		excess := 0
		for i := range hist {
			if hist[i] > limit {
				excess += hist[i] - limit
				hist[i] = limit
			}
		}
		batch, residual := excess/256, excess%256
		for i := range hist {
			hist[i] += batch
		}
		if residual > 0 {
			step := max(256/residual, 1)
			for i := 0; i < 256 && residual > 0; i += step {
				hist[i]++
				residual--
			}
		}
	}

	var lut [256]uint8
	scale := 255.0 / float64(area)
	sum := 0
	for i := range hist {
		sum += hist[i]
		lut[i] = clampByte(float64(sum) * scale)
	}
	return lut
}

// 自适应阈值处理器 (高斯加权)
// A pixel becomes white when it is brighter than its weighted neighbourhood
// minus constant, black otherwise.
type AdaptiveThresholdProcessor struct {
	blockSize int
	constant  float64
}

func NewAdaptiveThresholdProcessor(blockSize int, constant float64) *AdaptiveThresholdProcessor {
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	return &AdaptiveThresholdProcessor{blockSize: blockSize, constant: constant}
}

func (p *AdaptiveThresholdProcessor) Process(img image.Image) (image.Image, error) {
	src := toGray(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst, nil
	}

	kernel := gaussianKernel(p.blockSize)
	half := p.blockSize / 2

	// horizontal pass
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			var acc float64
			for k, kv := range kernel {
				acc += kv * float64(row[clampInt(x+k-half, 0, w-1)])
			}
			tmp[y*w+x] = acc
		}
	}

	// vertical pass, then compare
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, kv := range kernel {
				acc += kv * tmp[clampInt(y+k-half, 0, h-1)*w+x]
			}
			threshold := math.Round(acc) - p.constant
			if float64(src.Pix[y*src.Stride+x]) > threshold {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst, nil
}

// gaussianKernel uses the sigma OpenCV derives from the block size.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	half := size / 2
	kernel := make([]float64, size)
	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// toGray returns a zero-origin *image.Gray copy of img.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) && g.Stride == b.Dx() {
		out := image.NewGray(b)
		copy(out.Pix, g.Pix)
		return out
	}
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

func split(f float64, n int) (int, float64) {
	if f < 0 {
		return 0, 0
	}
	i := int(math.Floor(f))
	if i >= n-1 {
		return n - 1, 0
	}
	return i, f - float64(i)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

package spinner

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	separatorColor = color.RGBA{R: 53, G: 44, B: 14, A: 64}  // rgba(212,175,55,0.25) 预乘
	borderColor    = color.RGBA{R: 85, G: 70, B: 22, A: 102} // rgba(212,175,55,0.4) 预乘
)

const (
	maskEdgeAlpha  = 0.25 // 上下边缘阴影的不透明度
	maskFadeRatio  = 0.25 // 阴影从边缘淡出的范围（占列高比例）
	borderWidth    = float32(4)
	separatorWidth = float32(2)
)

func (e *Engine) surfaceSize() (int, int) {
	return e.drawWidth, e.tuning.DisplaySize
}

// drawSurface 将画布绘制到 dst；画布过期时先重绘
//
// Ebitengine 要求绘制指令在 Draw 阶段发出，所以帧回调只标记 dirty，
// 真正的清屏与绘制发生在这里。
func (e *Engine) drawSurface(dst *ebiten.Image, x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed || e.sheet == nil || e.surface == nil {
		return
	}
	if e.dirty {
		e.renderLocked()
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	dst.DrawImage(e.surface, op)
}

// renderLocked 完整绘制一帧：各列、分割线、外边框
func (e *Engine) renderLocked() {
	e.surface.Clear()

	for i := range e.columns {
		e.drawColumnLocked(i)
	}

	w, h := e.surfaceSize()
	vector.StrokeRect(e.surface, 0, 0, float32(w), float32(h), borderWidth, borderColor, false)
	e.dirty = false
}

// drawColumnLocked 绘制单列：可能可见的三个符号 + 运动模糊 + 立体遮罩 + 分割线
func (e *Engine) drawColumnLocked(index int) {
	col := e.columns[index]
	size := e.tuning.DisplaySize
	sides := e.opts.SideNumber
	x := float64(index * size)

	floatIdx := math.Mod(col.CurrentPos, float64(sides))
	topIdx := int(math.Floor(floatIdx))
	offset := (floatIdx - float64(topIdx)) * float64(size)

	blur := math.Min(col.Velocity*e.tuning.BlurPerVelocity, e.tuning.MaxBlur)

	for i := -1; i <= 1; i++ {
		drawIdx := ((topIdx+i)%sides + sides) % sides
		drawY := float64(i*size) - offset
		if drawY > -float64(size) && drawY < float64(size) {
			e.drawSymbolLocked(drawIdx, x, drawY, blur)
		}
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, 0)
	e.surface.DrawImage(e.maskLocked(), op)

	if index < e.opts.Columns-1 {
		vector.DrawFilledRect(e.surface, float32(x)+float32(size)-1, 0, separatorWidth, float32(size), separatorColor, false)
	}
}

// drawSymbolLocked 绘制一个符号，blur > 0 时沿竖直方向做盒式模糊
//
// 模糊通过多次平移叠加实现：每次以 1/n 的权重加法混合，合成结果即 n 个采样的平均值。
func (e *Engine) drawSymbolLocked(idx int, x, y, blur float64) {
	size := e.tuning.DisplaySize
	src := e.sheet.SubImage(image.Rect(0, idx*size, size, (idx+1)*size)).(*ebiten.Image)

	taps := int(math.Ceil(blur))
	if taps == 0 {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(x, y)
		e.surface.DrawImage(src, op)
		return
	}

	samples := 2*taps + 1
	weight := float32(1) / float32(samples)
	for s := -taps; s <= taps; s++ {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(x, y+float64(s)*blur/float64(taps))
		op.ColorScale.Scale(weight, weight, weight, weight)
		op.Blend = ebiten.BlendLighter
		e.surface.DrawImage(src, op)
	}
}

// maskLocked 返回（按需创建）列遮罩
func (e *Engine) maskLocked() *ebiten.Image {
	if e.mask == nil {
		e.mask = ebiten.NewImageFromImage(buildColumnMask(e.tuning.DisplaySize))
	}
	return e.mask
}

// buildColumnMask 生成竖直渐变遮罩：上下边缘为 25% 黑色，中间 50% 透明
func buildColumnMask(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if size < 2 {
		return img
	}
	for y := 0; y < size; y++ {
		a := uint8(math.Round(maskAlpha(float64(y)/float64(size-1)) * 255))
		c := color.RGBA{A: a}
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// maskAlpha 渐变在 t ∈ [0, 1] 处的不透明度
func maskAlpha(t float64) float64 {
	switch {
	case t < maskFadeRatio:
		return maskEdgeAlpha * (1 - t/maskFadeRatio)
	case t > 1-maskFadeRatio:
		return maskEdgeAlpha * (t - (1 - maskFadeRatio)) / maskFadeRatio
	default:
		return 0
	}
}

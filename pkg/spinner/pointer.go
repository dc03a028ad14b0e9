package spinner

import (
	"image"
	"image/color"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

// PointerSide 指针位于转盘的哪一侧
type PointerSide int

const (
	// PointerLeft 左侧指针，尖端朝右
	PointerLeft PointerSide = iota
	// PointerRight 右侧指针，尖端朝左
	PointerRight
)

// pointerWidth 指针节点宽度（像素）
const pointerWidth = 28

var pointerColor = color.RGBA{R: 212, G: 175, B: 55, A: 255}

// Pointer 转盘两侧的装饰指针
//
// 旋转时随速度随机抖动，模拟指针被转轮拨动的声响；停下后归零。
type Pointer struct {
	side   PointerSide
	height int
	angle  atomic.Uint64 // math.Float64bits(角度，单位：度)

	imgOnce sync.Once
	img     *ebiten.Image
}

func newPointer(side PointerSide, height int) *Pointer {
	return &Pointer{side: side, height: height}
}

// Side 指针位置
func (p *Pointer) Side() PointerSide {
	return p.side
}

// Angle 当前旋转角度（度）
func (p *Pointer) Angle() float64 {
	return math.Float64frombits(p.angle.Load())
}

func (p *Pointer) setAngle(deg float64) {
	p.angle.Store(math.Float64bits(deg))
}

// Size 实现 Node
func (p *Pointer) Size() (int, int) {
	return pointerWidth, p.height
}

// DrawAt 实现 Node：以尖端为轴旋转后绘制
func (p *Pointer) DrawAt(dst *ebiten.Image, x, y float64) {
	p.imgOnce.Do(func() {
		p.img = ebiten.NewImageFromImage(pointerShape(p.side))
	})

	b := p.img.Bounds()
	pivotX := float64(b.Dx())
	if p.side == PointerRight {
		pivotX = 0
	}
	pivotY := float64(b.Dy()) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-pivotX, -pivotY)
	op.GeoM.Rotate(p.Angle() * math.Pi / 180)
	op.GeoM.Translate(pivotX, pivotY)
	op.GeoM.Translate(x, y+float64(p.height)/2-pivotY)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(p.img, op)
}

// pointerShape 生成三角形指针图像
func pointerShape(side PointerSide) *image.RGBA {
	w, h := pointerWidth, pointerWidth
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	half := float64(h) / 2
	for y := 0; y < h; y++ {
		// 距离中线越远，三角形越窄
		span := float64(w) * (1 - math.Abs(float64(y)+0.5-half)/half)
		for x := 0; x < w; x++ {
			fx := float64(x) + 0.5
			inside := fx <= span
			if side == PointerRight {
				inside = fx >= float64(w)-span
			}
			if inside {
				img.SetRGBA(x, y, pointerColor)
			}
		}
	}
	return img
}

package spinner

import "github.com/hajimehoshi/ebiten/v2"

// Node 可以挂载到容器中的可视元素
type Node interface {
	// Size 元素尺寸（像素）
	Size() (w, h int)
	// DrawAt 以 (x, y) 为左上角绘制到 dst
	DrawAt(dst *ebiten.Image, x, y float64)
}

// Container 承载转盘元素的容器（例如开奖区域）
type Container interface {
	AppendChild(n Node)
}

// surfaceNode 将引擎的画布暴露为 Node
type surfaceNode struct {
	engine *Engine
}

func (s surfaceNode) Size() (int, int) {
	return s.engine.surfaceSize()
}

func (s surfaceNode) DrawAt(dst *ebiten.Image, x, y float64) {
	s.engine.drawSurface(dst, x, y)
}

// Attach 按「左指针、画布、右指针」的顺序挂载到容器
func (e *Engine) Attach(c Container) {
	c.AppendChild(e.left)
	c.AppendChild(surfaceNode{engine: e})
	c.AppendChild(e.right)
}

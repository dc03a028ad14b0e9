// generate_sides - 生成占位符号图集
// 每个符号一格，从上到下排列，格子边长与配置中的 sideSize 一致
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/decker502/reelspin/pkg/config"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"
)

// palette 每个符号的底色
var palette = []color.RGBA{
	{R: 164, G: 104, B: 48, A: 255},
	{R: 196, G: 64, B: 52, A: 255},
	{R: 52, G: 120, B: 188, A: 255},
	{R: 212, G: 175, B: 55, A: 255},
	{R: 220, G: 120, B: 96, A: 255},
	{R: 84, G: 148, B: 72, A: 255},
}

// labelScale 文字放大倍数（basicfont 只有 13px 高）
const labelScale = 4

// renderCell 绘制一个符号格：底色 + 内框 + 居中的名称
func renderCell(name string, bg color.RGBA, size int) *image.RGBA {
	cell := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(cell, cell.Bounds(), &image.Uniform{C: color.RGBA{R: 250, G: 244, B: 228, A: 255}}, image.Point{}, draw.Src)

	inset := size / 12
	inner := image.Rect(inset, inset, size-inset, size-inset)
	draw.Draw(cell, inner, &image.Uniform{C: bg}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	w := d.MeasureString(name).Ceil()
	h := face.Metrics().Height.Ceil()

	label := image.NewRGBA(image.Rect(0, 0, w, h))
	d.Dst = label
	d.Src = image.White
	d.Dot = fixed.P(0, face.Metrics().Ascent.Ceil())
	d.DrawString(name)

	sw, sh := w*labelScale, h*labelScale
	if sw > inner.Dx() {
		sh = sh * inner.Dx() / sw
		sw = inner.Dx()
	}
	x := (size - sw) / 2
	y := (size - sh) / 2
	draw.NearestNeighbor.Scale(cell, image.Rect(x, y, x+sw, y+sh), label, label.Bounds(), draw.Over, nil)
	return cell
}

func main() {
	configPath := flag.String("config", "data/spinner.yaml", "转盘配置文件路径")
	output := flag.String("out", "", "输出路径（默认使用配置中的 sidesPath）")
	flag.Parse()

	cfg, err := config.LoadSpinnerConfig(*configPath)
	if err != nil {
		log.Printf("[GenerateSides] Config unavailable (%v), using defaults", err)
		cfg = config.DefaultSpinnerConfig()
	}

	out := *output
	if out == "" {
		out = cfg.Spinner.SidesPath
	}

	size := cfg.Tuning.SideSize
	sides := cfg.Spinner.SideNumber
	sheet := image.NewRGBA(image.Rect(0, 0, size, size*sides))

	// 各格互不重叠，可以并行绘制
	var g errgroup.Group
	g.SetLimit(4)
	for i := 0; i < sides; i++ {
		g.Go(func() error {
			name := fmt.Sprintf("#%d", i)
			if i < len(config.SymbolNames) {
				name = config.SymbolNames[i]
			}
			cell := renderCell(name, palette[i%len(palette)], size)
			draw.Draw(sheet, image.Rect(0, i*size, size, (i+1)*size), cell, image.Point{}, draw.Src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("绘制图集失败: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		log.Fatalf("创建目录失败: %v", err)
	}
	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("创建文件失败: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, sheet); err != nil {
		log.Fatalf("写入 PNG 失败: %v", err)
	}
	fmt.Printf("Wrote %d symbols (%dx%d each) to %s\n", sides, size, size, out)
}

package spinner

import (
	"github.com/decker502/reelspin/pkg/config"
	"github.com/decker502/reelspin/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
)

// ResourceLoader 基于 ResourceManager / AudioManager 的 AssetLoader
type ResourceLoader struct {
	resources *game.ResourceManager
	audio     *game.AudioManager
	tuning    config.SpinnerTuning
}

// NewResourceLoader 创建资源加载器
func NewResourceLoader(rm *game.ResourceManager, am *game.AudioManager, tuning config.SpinnerTuning) *ResourceLoader {
	return &ResourceLoader{resources: rm, audio: am, tuning: tuning}
}

// LoadSymbolSheet 按调校参数把图集缩放到显示尺寸
func (l *ResourceLoader) LoadSymbolSheet(path string, sides int) (*ebiten.Image, error) {
	return l.resources.LoadSymbolSheet(path, sides, l.tuning.SideSize, l.tuning.DisplaySize)
}

// LoadTickClip 解码滚动音效并交给 AudioManager 播放
func (l *ResourceLoader) LoadTickClip(path string) (ClipPlayer, error) {
	pcm, err := l.resources.LoadClip(path)
	if err != nil {
		return nil, err
	}
	return l.audio.NewClipPlayer(path, pcm), nil
}

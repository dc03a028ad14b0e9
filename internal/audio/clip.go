// Package audio 将短音效解码为 Ebitengine 可直接播放的 PCM 数据
//
// Ebitengine 的 audio.Context 只接受「16 位有符号、小端、双声道、与上下文同采样率」
// 的字节流。MP3 / OGG / WAV 交给 Ebitengine 自带的解码器处理，
// AU 文件由本包自行解码，再统一转换为上述格式。
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// Clip 解码后的音频采样（交错排列）
type Clip struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames 返回采样帧数（每帧包含 Channels 个采样）
func (c *Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// StereoPCM 转换为指定采样率的 16 位小端双声道字节流
//
// 单声道复制到左右声道；采样率不同时使用线性插值重采样。
func (c *Clip) StereoPCM(sampleRate int) []byte {
	frames := c.Frames()
	if frames == 0 || sampleRate <= 0 {
		return nil
	}

	outFrames := frames
	if c.SampleRate != sampleRate {
		outFrames = int(int64(frames) * int64(sampleRate) / int64(c.SampleRate))
	}

	out := make([]byte, outFrames*4)
	ratio := float64(c.SampleRate) / float64(sampleRate)
	for i := 0; i < outFrames; i++ {
		src := float64(i) * ratio
		j := int(src)
		frac := src - float64(j)
		for ch := 0; ch < 2; ch++ {
			a := c.sample(j, ch)
			b := c.sample(j+1, ch)
			v := int16(float64(a) + (float64(b)-float64(a))*frac)
			binary.LittleEndian.PutUint16(out[i*4+ch*2:], uint16(v))
		}
	}
	return out
}

// sample 读取第 frame 帧的第 ch 个声道；越界时返回最后一帧
func (c *Clip) sample(frame, ch int) int16 {
	frames := c.Frames()
	if frame >= frames {
		frame = frames - 1
	}
	if ch >= c.Channels {
		ch = c.Channels - 1
	}
	return c.Samples[frame*c.Channels+ch]
}

// DecodeClip 按扩展名解码音效文件，返回可直接交给 audio.Context 播放的字节流
//
// 参数：
//   - path: 文件路径（仅用于判断格式和错误信息）
//   - data: 文件内容
//   - sampleRate: 目标采样率（audio.Context 的采样率）
//
// 支持格式：.mp3 / .ogg / .wav / .au
func DecodeClip(path string, data []byte, sampleRate int) ([]byte, error) {
	reader := bytes.NewReader(data)
	ext := strings.ToLower(filepath.Ext(path))

	var stream io.Reader
	switch ext {
	case ".mp3":
		s, err := mp3.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 clip %s: %w", path, err)
		}
		stream = s
	case ".ogg":
		s, err := vorbis.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG clip %s: %w", path, err)
		}
		stream = s
	case ".wav":
		s, err := wav.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV clip %s: %w", path, err)
		}
		stream = s
	case ".au":
		clip, err := DecodeAU(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode AU clip %s: %w", path, err)
		}
		pcm := clip.StereoPCM(sampleRate)
		if len(pcm) == 0 {
			return nil, fmt.Errorf("AU clip %s contains no samples", path)
		}
		return pcm, nil
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .ogg, .wav, .au)", ext)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read decoded clip %s: %w", path, err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("clip %s contains no samples", path)
	}
	return pcm, nil
}

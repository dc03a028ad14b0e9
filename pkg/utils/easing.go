package utils

import "math"

// Easing Functions (缓动函数)
//
// 缓动函数用于控制转盘滚动的速度曲线，使滚动看起来更接近实体转轮。
// 所有函数接受一个进度值 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
//
// 参考：https://easings.net/

// EaseInOutQuint 五次方缓入缓出
// 特点：起步和停止都很柔和，中段极快（转盘"甩动"的观感）
// 公式：
//
//	t < 0.5: f(t) = 16t⁵
//	t >= 0.5: f(t) = 1 - (-2t + 2)⁵ / 2
func EaseInOutQuint(t float64) float64 {
	if t < 0.5 {
		return 16 * t * t * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 5)/2
}

// Progress 计算动画进度并限制在 [0, 1]
// duration <= 0 视为已完成（返回 1），避免除零
func Progress(elapsed, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	p := elapsed / duration
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Lerp 线性插值
// 在 a 和 b 之间根据 t 插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

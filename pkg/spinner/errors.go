package spinner

import "errors"

// SpinTo / Engine 生命周期错误
var (
	// ErrNotReady 符号图集尚未加载完成（或加载失败），引擎处于惰性状态
	ErrNotReady = errors.New("spinner: symbol sheet not loaded")
	// ErrDestroyed 引擎已被销毁
	ErrDestroyed = errors.New("spinner: engine destroyed")
	// ErrTargetCount 目标数量与列数不一致
	ErrTargetCount = errors.New("spinner: target count does not match column count")
	// ErrTargetOutOfRange 目标索引超出 [0, SideNumber)
	ErrTargetOutOfRange = errors.New("spinner: target index out of range")
	// ErrNegativeDuration 基础时长为负数
	ErrNegativeDuration = errors.New("spinner: negative base duration")
)

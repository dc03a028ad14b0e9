// Package spinner 实现多列转盘的开奖动画引擎
//
// 一个 Engine 对应一个房间里的一组转轮：
//   - 每列独立插值（五次方缓入缓出），保证至少转过 MinSpins 整圈后停在目标符号
//   - 由 FrameScheduler 逐帧驱动，所有列停止后结束调度并完成 SpinHandle
//   - 每帧最多触发一次滚动音效，并按最小间隔节流
//   - 新的 SpinTo 会抢占正在进行的旋转，旧句柄以 SpinSuperseded 结束
//
// Registry 负责按 (房间号, 参数) 复用实例，并在视图卸载时销毁实例。
package spinner

package spinner

import (
	"fmt"
	"log"
	"sync"

	"github.com/decker502/reelspin/pkg/config"
)

// EngineFactory 创建新引擎
type EngineFactory func(opts config.SpinnerOptions) (*Engine, error)

// FactoryFor 返回使用固定依赖创建引擎的工厂
func FactoryFor(deps Deps) EngineFactory {
	return func(opts config.SpinnerOptions) (*Engine, error) {
		return NewEngine(opts, deps)
	}
}

type registryEntry struct {
	roomID string
	engine *Engine
}

// Registry 按 (房间号, 参数) 缓存引擎实例
//
// 同一个键最多只有一个存活实例：查找与创建在同一把锁内完成，
// 并发 Acquire 相同的键只会创建一次。
// Registry 由上层（应用 / 场景）持有并负责关闭，不存在全局实例。
type Registry struct {
	factory EngineFactory

	mu      sync.Mutex
	engines map[string]*registryEntry
}

// NewRegistry 创建空的注册表
func NewRegistry(factory EngineFactory) *Registry {
	return &Registry{
		factory: factory,
		engines: make(map[string]*registryEntry),
	}
}

// Acquire 返回 (roomID, opts) 对应的引擎，不存在时创建
func (r *Registry) Acquire(roomID string, opts config.SpinnerOptions) (*Engine, error) {
	key, err := config.IdentityKey(roomID, opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.engines[key]; ok {
		return entry.engine, nil
	}

	engine, err := r.factory(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create spinner for room %s: %w", roomID, err)
	}
	r.engines[key] = &registryEntry{roomID: roomID, engine: engine}
	log.Printf("[Registry] Registered spinner for room %s (%d live)", roomID, len(r.engines))
	return engine, nil
}

// Release 销毁并移除 (roomID, opts) 对应的引擎
//
// 返回：
//   - bool: 是否找到并销毁了实例
func (r *Registry) Release(roomID string, opts config.SpinnerOptions) bool {
	key, err := config.IdentityKey(roomID, opts)
	if err != nil {
		return false
	}

	r.mu.Lock()
	entry, ok := r.engines[key]
	if ok {
		delete(r.engines, key)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	entry.engine.Destroy()
	log.Printf("[Registry] Released spinner for room %s", roomID)
	return true
}

// ReleaseRoom 销毁房间内的所有引擎（无论参数）
//
// 返回：
//   - int: 销毁的实例数量
func (r *Registry) ReleaseRoom(roomID string) int {
	r.mu.Lock()
	var victims []*Engine
	for key, entry := range r.engines {
		if entry.roomID == roomID {
			victims = append(victims, entry.engine)
			delete(r.engines, key)
		}
	}
	r.mu.Unlock()

	for _, e := range victims {
		e.Destroy()
	}
	if len(victims) > 0 {
		log.Printf("[Registry] Released %d spinner(s) for room %s", len(victims), roomID)
	}
	return len(victims)
}

// Len 当前存活的实例数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// Close 销毁所有实例
func (r *Registry) Close() {
	r.mu.Lock()
	engines := r.engines
	r.engines = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, entry := range engines {
		entry.engine.Destroy()
	}
}

package service

import (
	"hash/fnv"
	"sync"
)

// KeyLocks 分段键锁。同键调用串行，不同键（不同学生/概念）并行无干扰。
// 在数据库行锁之外再挡一层，避免同一实例内的并发事务互相等待行锁。
type KeyLocks struct {
	shards []sync.Mutex
}

func NewKeyLocks(shardCount int) *KeyLocks {
	if shardCount <= 0 {
		shardCount = 256
	}
	return &KeyLocks{shards: make([]sync.Mutex, shardCount)}
}

func (l *KeyLocks) shard(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &l.shards[h.Sum32()%uint32(len(l.shards))]
}

func (l *KeyLocks) Lock(key string) {
	l.shard(key).Lock()
}

func (l *KeyLocks) Unlock(key string) {
	l.shard(key).Unlock()
}

// WithLock 持锁执行 fn
func (l *KeyLocks) WithLock(key string, fn func() error) error {
	m := l.shard(key)
	m.Lock()
	defer m.Unlock()
	return fn()
}

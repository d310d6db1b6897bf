package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLocksSerializesSameKey(t *testing.T) {
	locks := NewKeyLocks(16)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 500; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.WithLock("student-1|kinematics", func() error {
				counter++ // 读改写，靠键锁串行
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 500, counter)
}

func TestKeyLocksDifferentKeysIndependent(t *testing.T) {
	locks := NewKeyLocks(256)

	locks.Lock("a")
	done := make(chan struct{})
	go func() {
		// 不同键不应被 a 的持锁阻塞
		locks.WithLock("b", func() error { return nil })
		close(done)
	}()
	<-done
	locks.Unlock("a")
}

func TestKeyLocksWithLockPropagatesError(t *testing.T) {
	locks := NewKeyLocks(4)
	err := locks.WithLock("k", func() error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}

package subscription

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserLocks_SerializesPerUser(t *testing.T) {
	locks := NewUserLocks()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock(42)
			counter++
			locks.Unlock(42)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestUserLocks_IndependentUsers(t *testing.T) {
	locks := NewUserLocks()

	locks.Lock(1)
	// A different user's lock must not block.
	done := make(chan struct{})
	go func() {
		locks.Lock(2)
		locks.Unlock(2)
		close(done)
	}()
	<-done
	locks.Unlock(1)
}

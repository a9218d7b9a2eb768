package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestLRU_SetAndGet(t *testing.T) {
	c := NewLRU[int](4)

	c.Set("ruff", 1)
	c.Set("ty", 2)

	if v, ok := c.Get("ruff"); !ok || v != 1 {
		t.Errorf("Get(ruff) = %v, %v", v, ok)
	}
	if _, ok := c.Get("uv"); ok {
		t.Error("Get(uv) should miss")
	}

	c.Set("ruff", 3)
	if v, _ := c.Get("ruff"); v != 3 {
		t.Errorf("update not applied, got %v", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[string](2)
	var evicted []string
	c.OnEvict(func(key string, _ string) { evicted = append(evicted, key) })

	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // b is now least recently used
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
	keys := c.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Errorf("Keys = %v", keys)
	}
}

func TestLRU_Unbounded(t *testing.T) {
	c := NewLRU[int](0)
	for i := 0; i < 500; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	if c.Len() != 500 {
		t.Errorf("unbounded cache dropped entries, Len = %d", c.Len())
	}
}

func TestLRU_DeleteAndClear(t *testing.T) {
	c := NewLRU[int](10)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU[int](50)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (id*100+j)%75)
				c.Set(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}

func TestLRU_Interface(t *testing.T) {
	var _ Cache[int] = NewLRU[int](1)
}

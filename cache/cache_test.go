package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestCache_Set_Get_Len(t *testing.T) {
	c := NewCache[string, string]()

	if l := c.Len(); l != 0 {
		t.Errorf("Expected initial length 0, got %d", l)
	}

	c.Set("greeting", "Hello")
	val, ok := c.Get("greeting")
	if !ok {
		t.Errorf("Expected 'greeting' to be found")
	}
	if val != "Hello" {
		t.Errorf("Expected value 'Hello', got '%s'", val)
	}
	if l := c.Len(); l != 1 {
		t.Errorf("Expected length 1 after Set, got %d", l)
	}

	c.Set("greeting", "Hi")
	if val, _ := c.Get("greeting"); val != "Hi" {
		t.Errorf("Expected overwritten value 'Hi', got '%s'", val)
	}
	if l := c.Len(); l != 1 {
		t.Errorf("Expected length to stay 1 after overwrite, got %d", l)
	}

	if _, ok = c.Get("nonexistent"); ok {
		t.Errorf("Expected 'nonexistent' to not be found")
	}
}

func TestCache_GetOrSet(t *testing.T) {
	c := NewCache[string, string]()

	val, loaded := c.GetOrSet("newKey", "New Value")
	if loaded {
		t.Errorf("Expected 'newKey' to be stored, not loaded")
	}
	if val != "New Value" {
		t.Errorf("Expected value 'New Value', got '%s'", val)
	}

	val, loaded = c.GetOrSet("newKey", "Another Value")
	if !loaded {
		t.Errorf("Expected 'newKey' to be loaded, not stored")
	}
	if val != "New Value" {
		t.Errorf("Expected value 'New Value', got '%s'", val)
	}
}

func TestCache_GetOrSet_ConcurrentSingleWinner(t *testing.T) {
	c := NewCache[string, int]()
	var wg sync.WaitGroup
	var mu sync.Mutex
	stored := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, loaded := c.GetOrSet("host", n); !loaded {
				mu.Lock()
				stored++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if stored != 1 {
		t.Errorf("Expected exactly one GetOrSet to store, got %d", stored)
	}
}

func TestCache_Delete_Clean_Range(t *testing.T) {
	c := NewCache[string, int]()
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}

	c.Delete("key0")
	if _, ok := c.Get("key0"); ok {
		t.Errorf("Expected key0 to be deleted")
	}

	sum := 0
	c.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	if sum != 1+2+3+4 {
		t.Errorf("Expected Range to visit remaining values summing to 10, got %d", sum)
	}

	visited := 0
	c.Range(func(_ string, _ int) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("Expected Range to stop after first callback, visited %d", visited)
	}

	c.Clean()
	if l := c.Len(); l != 0 {
		t.Errorf("Expected length 0 after Clean, got %d", l)
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set(n, n*n)
			c.Get(n)
		}(i)
	}
	wg.Wait()

	if l := c.Len(); l != 50 {
		t.Errorf("Expected 50 entries after concurrent writes, got %d", l)
	}
}

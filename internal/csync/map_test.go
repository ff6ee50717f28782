package csync

import (
	"sort"
	"sync"
	"testing"
)

func TestMap_Get(t *testing.T) {
	m := NewMap[string, int]()
	m.Swap("a", 1)

	v, ok := m.Get("a")
	if !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := m.Get("b"); ok {
		t.Fatal("Get(b) should report missing key")
	}
}

func TestMap_PutIfAbsent(t *testing.T) {
	m := NewMap[string, int]()

	v, loaded := m.PutIfAbsent("a", 1)
	if loaded || v != 1 {
		t.Fatalf("first PutIfAbsent = %d, %v; want 1, false", v, loaded)
	}

	v, loaded = m.PutIfAbsent("a", 2)
	if !loaded || v != 1 {
		t.Fatalf("second PutIfAbsent = %d, %v; want existing 1, true", v, loaded)
	}
}

func TestMap_Swap(t *testing.T) {
	m := NewMap[string, int]()

	if _, existed := m.Swap("a", 1); existed {
		t.Fatal("Swap on empty map reported an existing value")
	}
	old, existed := m.Swap("a", 2)
	if !existed || old != 1 {
		t.Fatalf("Swap = %d, %v; want 1, true", old, existed)
	}
	if v, _ := m.Get("a"); v != 2 {
		t.Fatalf("after Swap, Get(a) = %d; want 2", v)
	}
}

func TestMap_ConcurrentPutIfAbsent(t *testing.T) {
	m := NewMap[string, int]()

	var wg sync.WaitGroup
	wins := make([]bool, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, loaded := m.PutIfAbsent("key", i)
			wins[i] = !loaded
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, w := range wins {
		if w {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning insert, got %d", winners)
	}
}

func TestMap_Keys(t *testing.T) {
	m := NewMap[string, int]()
	m.Swap("b", 2)
	m.Swap("a", 1)

	keys := m.Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("Keys() = %v; want [a b]", keys)
	}
}

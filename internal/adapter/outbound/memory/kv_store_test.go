package memory

import (
	"fmt"
	"sync"
	"testing"
)

func TestKVStore_GetMissing(t *testing.T) {
	t.Parallel()

	s := NewKVStore()
	v, ok, err := s.Get("AUTH")
	if err != nil || ok || v != "" {
		t.Errorf("Get() = %q, %v, %v; want empty, false, nil", v, ok, err)
	}
}

func TestKVStore_SetReplaces(t *testing.T) {
	t.Parallel()

	s := NewKVStore()
	if err := s.Set("API_BASE_URL", "http://a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("API_BASE_URL", "http://b"); err != nil {
		t.Fatal(err)
	}
	v, ok, _ := s.Get("API_BASE_URL")
	if !ok || v != "http://b" {
		t.Errorf("Get() = %q, %v; want http://b", v, ok)
	}
}

func TestKVStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := NewKVStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = s.Set(fmt.Sprintf("k%d", i), "v")
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _, _ = s.Get(fmt.Sprintf("k%d", i))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		if _, ok, _ := s.Get(fmt.Sprintf("k%d", i)); !ok {
			t.Errorf("k%d missing after concurrent writes", i)
		}
	}
}

package tilecache

import (
	"errors"
	"image"
	"sync"
	"testing"
)

func TestNewRejectsInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New[int](size); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("size %d: got %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestAddAndGet(t *testing.T) {
	c, err := New[string](8)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h := c.NewCache(image.Rect(0, 0, 100, 50), image.Pt(32, 32))
	if h.IsZero() {
		t.Fatal("expected a non-zero handle")
	}

	tests := []struct {
		name   string
		origin image.Point
		stored bool
	}{
		{"first block", image.Pt(0, 0), true},
		{"edge block", image.Pt(96, 32), true},
		{"misaligned", image.Pt(10, 0), false},
		{"outside region", image.Pt(128, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.AddTile(h, tt.origin, tt.name)
			got, ok := c.GetTile(h, tt.origin)
			if ok != tt.stored {
				t.Fatalf("got stored=%v, want %v", ok, tt.stored)
			}
			if ok && got != tt.name {
				t.Errorf("got %q, want %q", got, tt.name)
			}
		})
	}
}

func TestUnknownHandle(t *testing.T) {
	c, _ := New[int](4)
	var h Handle
	c.AddTile(h, image.Pt(0, 0), 1)
	if _, ok := c.GetTile(h, image.Pt(0, 0)); ok {
		t.Error("expected miss for a handle that was never issued")
	}
	if c.Len() != 0 {
		t.Errorf("got %d blocks, want 0", c.Len())
	}
	if h := c.NewCache(image.Rect(0, 0, 8, 8), image.Pt(0, 8)); !h.IsZero() {
		t.Error("expected zero handle for an empty block size")
	}
}

func TestEviction(t *testing.T) {
	c, _ := New[int](2)
	h := c.NewCache(image.Rect(0, 0, 64, 8), image.Pt(8, 8))

	c.AddTile(h, image.Pt(0, 0), 0)
	c.AddTile(h, image.Pt(8, 0), 1)
	c.GetTile(h, image.Pt(0, 0)) // most recently used
	c.AddTile(h, image.Pt(16, 0), 2)

	if _, ok := c.GetTile(h, image.Pt(8, 0)); ok {
		t.Error("least recently used block should have been evicted")
	}
	if v, ok := c.GetTile(h, image.Pt(0, 0)); !ok || v != 0 {
		t.Errorf("got %d, %v, want 0, true", v, ok)
	}
}

func TestDeleteCache(t *testing.T) {
	c, _ := New[int](16)
	a := c.NewCache(image.Rect(0, 0, 16, 16), image.Pt(8, 8))
	b := c.NewCache(image.Rect(0, 0, 16, 16), image.Pt(8, 8))
	if a == b {
		t.Fatal("handles must be distinct")
	}

	for _, p := range []image.Point{{0, 0}, {8, 0}, {0, 8}} {
		c.AddTile(a, p, 1)
		c.AddTile(b, p, 2)
	}
	c.DeleteCache(a)

	if got := c.Len(); got != 3 {
		t.Errorf("got %d blocks, want 3", got)
	}
	if _, ok := c.GetTile(a, image.Pt(0, 0)); ok {
		t.Error("deleted region still returns blocks")
	}
	if v, ok := c.GetTile(b, image.Pt(8, 0)); !ok || v != 2 {
		t.Errorf("got %d, %v, want 2, true", v, ok)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c, _ := New[int](64)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h := c.NewCache(image.Rect(0, 0, 32, 32), image.Pt(8, 8))
			for y := 0; y < 32; y += 8 {
				for x := 0; x < 32; x += 8 {
					c.AddTile(h, image.Pt(x, y), i)
					if v, ok := c.GetTile(h, image.Pt(x, y)); ok && v != i {
						t.Errorf("got %d, want %d", v, i)
					}
				}
			}
			c.DeleteCache(h)
		}(i)
	}
	wg.Wait()
}

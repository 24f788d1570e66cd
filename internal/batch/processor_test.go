package batch

import (
	"sync"
	"testing"

	"go.viam.com/test"
)

func TestRowsCoversEveryRowOnce(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		for _, height := range []int{1, 7, 8, 9, 100, 257} {
			p := NewPool(workers)
			var mu sync.Mutex
			seen := make([]int, height)
			p.Rows(height, func(y0, y1 int) {
				mu.Lock()
				defer mu.Unlock()
				for y := y0; y < y1; y++ {
					seen[y]++
				}
			})
			for _, n := range seen {
				test.That(t, n, test.ShouldEqual, 1)
			}
			test.That(t, p.Bands(), test.ShouldBeGreaterThan, 0)
		}
	}
}

func TestRowsEmpty(t *testing.T) {
	p := NewPool(4)
	called := false
	p.Rows(0, func(y0, y1 int) { called = true })
	test.That(t, called, test.ShouldBeFalse)
	test.That(t, p.Bands(), test.ShouldEqual, int64(0))
}

func TestNewPoolDefaults(t *testing.T) {
	test.That(t, NewPool(0).Workers(), test.ShouldBeGreaterThan, 0)
	test.That(t, NewPool(5).Workers(), test.ShouldEqual, 5)
}

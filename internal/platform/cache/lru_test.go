package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLRU_PutGet は基本的な格納と取得を検証します。
func TestLRU_PutGet(t *testing.T) {
	t.Parallel()

	c := NewLRU(3)

	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 3, c.Capacity())
}

// TestLRU_CapacityClamp は容量0以下が1に切り上げられることを検証します。
func TestLRU_CapacityClamp(t *testing.T) {
	t.Parallel()

	c := NewLRU(0)
	assert.Equal(t, 1, c.Capacity())

	c.Put("a", 1)
	c.Put("b", 2)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry must be evicted")
	_, ok = c.Get("b")
	assert.True(t, ok)
}

// TestLRU_EvictsLeastRecentlyUsed は容量超過時に最も古いエントリが
// 追い出されることを検証します。
func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := NewLRU(2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok, "a should have been evicted")

	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

// TestLRU_GetRefreshesRecency はGetが参照順を更新することを検証します。
func TestLRU_GetRefreshesRecency(t *testing.T) {
	t.Parallel()

	c := NewLRU(2)

	c.Put("a", 1)
	c.Put("b", 2)

	// aを参照して最新にする
	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Put("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted, not a")
	_, ok = c.Get("a")
	assert.True(t, ok)
}

// TestLRU_PutOverwritesAndRefreshes は既存キーへのPutが値を上書きし、
// 参照順も更新することを検証します。
func TestLRU_PutOverwritesAndRefreshes(t *testing.T) {
	t.Parallel()

	c := NewLRU(2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 100)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 100, v)
	assert.Equal(t, 2, c.Len())

	c.Put("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted after a was refreshed")
}

// TestLRU_RemoveAndPurge は個別削除と全削除を検証します。
func TestLRU_RemoveAndPurge(t *testing.T) {
	t.Parallel()

	c := NewLRU(5)

	c.Put("a", 1)
	c.Put("b", 2)

	c.Remove("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	// 存在しないキーの削除は何もしない
	c.Remove("missing")
	assert.Equal(t, 1, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, ok = c.Get("b")
	assert.False(t, ok)
}

// TestLRU_ManyEntries は容量いっぱいまで入れた後も直近N件だけが残る
// ことを検証します。
func TestLRU_ManyEntries(t *testing.T) {
	t.Parallel()

	const capacity = 10
	c := NewLRU(capacity)

	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("k%d", i), i)
	}

	assert.Equal(t, capacity, c.Len())
	for i := 0; i < 90; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.False(t, ok)
	}
	for i := 90; i < 100; i++ {
		v, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
}

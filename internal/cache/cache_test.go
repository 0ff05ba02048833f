package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGetExpire(t *testing.T) {
	c := New(time.Minute, 0)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2, time.Hour)

	v, ok := c.GetValue("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(2 * time.Minute)
	_, ok = c.GetValue("a")
	assert.False(t, ok)
	_, ok = c.GetValue("b")
	assert.True(t, ok)

	c.purge()
	assert.Equal(t, 1, c.Size())
}

func TestDeleteByPrefix(t *testing.T) {
	c := New(time.Minute, 0)
	c.Set("products:list:", 1)
	c.Set("products:list:mug", 2)
	c.Set("product:1", 3)

	c.DeleteByPrefix("products:list:")
	assert.Equal(t, 1, c.Size())

	c.Delete("product:1")
	assert.Zero(t, c.Size())
}

func TestStopIsIdempotent(t *testing.T) {
	c := New(time.Minute, time.Millisecond)
	c.Stop()
	assert.NotPanics(t, c.Stop)
}

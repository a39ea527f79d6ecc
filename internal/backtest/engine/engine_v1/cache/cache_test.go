package cache

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CacheTestSuite struct {
	suite.Suite
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func (suite *CacheTestSuite) TestSetGet() {
	c := NewCacheV1()

	c.Set("last_band_touch", 42)

	value, ok := c.Get("last_band_touch")
	suite.True(ok)
	suite.Equal(42, value)

	_, ok = c.Get("missing")
	suite.False(ok)
}

func (suite *CacheTestSuite) TestReset() {
	c := NewCacheV1()
	c.Set("a", 1)
	c.Set("b", "two")

	c.Reset()

	_, ok := c.Get("a")
	suite.False(ok)
	_, ok = c.Get("b")
	suite.False(ok)
}

func (suite *CacheTestSuite) TestDelete() {
	c := NewCacheV1()
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("never-set")

	_, ok := c.Get("a")
	suite.False(ok)
}

func (suite *CacheTestSuite) TestGetAs() {
	c := NewCacheV1()
	c.Set("index", 7)
	c.Set("name", "rsi")

	suite.Equal(7, GetAs[int](c, "index").Unwrap())
	suite.True(GetAs[string](c, "index").IsNone())
	suite.True(GetAs[int](c, "missing").IsNone())
	suite.Equal("rsi", GetAs[string](c, "name").Unwrap())
}

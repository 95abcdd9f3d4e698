package codegen

import (
	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"

	"github.com/streamsql/streamsql"
)

// Cache memoizes compiled expression metadata across plan constructions.
// Queries over the same topics recompile identical expressions against
// identical schemas; the cache amortizes that work. Cached metadata shares
// its UDF instances across plans, so only stateless functions belong in
// cached expressions.
type Cache struct {
	cache *ristretto.Cache
}

func NewCache() (*Cache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "couldn't create expression cache")
	}
	return &Cache{cache: cache}, nil
}

// Compile returns cached metadata for the expression-schema pair, compiling
// on a miss. The cache is best-effort: a just-stored entry may not be
// immediately visible, which only costs a recompilation.
func (c *Cache) Compile(expr Expression, schema streamsql.Schema, registry *Registry) (*ExpressionMetadata, error) {
	key := expr.String() + "|" + schema.Definition()
	if cached, ok := c.cache.Get(key); ok {
		if metadata, ok := cached.(*ExpressionMetadata); ok {
			return metadata, nil
		}
	}
	metadata, err := Compile(expr, schema, registry)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, metadata, 1)
	return metadata, nil
}

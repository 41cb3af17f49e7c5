package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultStatementCacheSize = 64

// stmtCache keeps prepared relation queries keyed by SQL text. Compiled
// queries differ only in parameters for the same relation shape, so the
// text repeats across calls.
//
// A statement is closed once it has been evicted and every caller that
// checked it out has released it.
type stmtCache struct {
	db *sql.DB

	// mu guards every cache call and the refs/evicted fields of entries.
	// The evict callback runs inside cache calls, so it never locks.
	mu    sync.Mutex
	cache *lru.Cache[string, *cachedStmt]
}

type cachedStmt struct {
	stmt    *sql.Stmt
	refs    int
	evicted bool
}

func newStmtCache(db *sql.DB, size int) (*stmtCache, error) {
	cache, err := lru.NewWithEvict(size, func(_ string, e *cachedStmt) {
		e.evicted = true
		if e.refs == 0 {
			e.stmt.Close()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create statement cache: %w", err)
	}
	return &stmtCache{db: db, cache: cache}, nil
}

// get checks out the prepared statement for query, preparing it on a miss.
// The returned release func must be called once the statement is no longer
// in use; the statement stays open until then even if it is evicted.
func (c *stmtCache) get(ctx context.Context, query string) (*sql.Stmt, func(), error) {
	c.mu.Lock()
	if e, ok := c.cache.Get(query); ok {
		e.refs++
		c.mu.Unlock()
		return e.stmt, c.releaser(e), nil
	}
	c.mu.Unlock()

	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("prepare query: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have prepared the same text meanwhile.
	if e, ok := c.cache.Get(query); ok {
		stmt.Close()
		e.refs++
		return e.stmt, c.releaser(e), nil
	}
	e := &cachedStmt{stmt: stmt, refs: 1}
	c.cache.Add(query, e)
	return stmt, c.releaser(e), nil
}

func (c *stmtCache) releaser(e *cachedStmt) func() {
	return sync.OnceFunc(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		e.refs--
		if e.evicted && e.refs == 0 {
			e.stmt.Close()
		}
	})
}

// Len is the number of cached statements.
func (c *stmtCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// purge evicts every cached statement. Statements still checked out are
// closed on release.
func (c *stmtCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

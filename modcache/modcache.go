// Package modcache implements the process-wide concurrent module cache and
// its sentinel-based import protocol (§4.7 "Cache", §5 "Shared-resource
// policy"). Concurrent imports of the same fully qualified name from
// different call chains collapse onto a single in-flight sentinel; a
// recursive import (A importing B importing A, on the very same call
// chain) is detected before it would otherwise deadlock waiting on its own
// sentinel.
package modcache

import (
	"context"

	"github.com/google/uuid"

	"github.com/pysymtab/engine/diagnostic"
	"github.com/pysymtab/engine/model"
)

// Status is the outcome of one import attempt.
type Status int

const (
	StatusOK Status = iota
	StatusRetry
	StatusRecursive
	StatusTimeout
	StatusError
)

// sentinel is the in-flight marker installed while a module is being
// resolved; done is closed exactly once, by the goroutine that installed it,
// after result/status are set.
type sentinel struct {
	token  string
	done   chan struct{}
	result *model.Module
	status Status
}

// Cache is the process-wide import cache. The zero value is not usable;
// construct with New.
type Cache struct {
	mu       chanMutex
	entries  map[string]interface{} // *model.Module or *sentinel
	reporter diagnostic.Reporter
}

// chanMutex mirrors model.LazyMember's single-slot channel mutex so the
// cache's hot path (re-reading an already-published module) stays
// allocation-light.
type chanMutex chan struct{}

func newChanMutex() chanMutex {
	c := make(chanMutex, 1)
	c <- struct{}{}
	return c
}
func (c chanMutex) Lock()   { <-c }
func (c chanMutex) Unlock() { c <- struct{}{} }

// New creates an empty cache reporting diagnostics to reporter (nil is a
// valid, silent reporter).
func New(reporter diagnostic.Reporter) *Cache {
	return &Cache{mu: newChanMutex(), entries: make(map[string]interface{}), reporter: reporter}
}

func (c *Cache) report(t diagnostic.Trace) {
	if c.reporter != nil {
		c.reporter.Report(t)
	}
}

const builtinsName = "builtins"

type inProgressKey struct{}

// WithInProgress records name as being resolved on this call chain; a
// Resolver that recursively imports another module must thread the
// returned context through so a cyclic import is caught instead of
// deadlocking on its own sentinel.
func WithInProgress(ctx context.Context, name string) context.Context {
	existing, _ := ctx.Value(inProgressKey{}).(map[string]bool)
	next := make(map[string]bool, len(existing)+1)
	for k := range existing {
		next[k] = true
	}
	next[name] = true
	return context.WithValue(ctx, inProgressKey{}, next)
}

func isInProgress(ctx context.Context, name string) bool {
	set, _ := ctx.Value(inProgressKey{}).(map[string]bool)
	return set[name]
}

// Resolver is the caller-supplied loader invoked once per import attempt
// when no cached entry exists. It performs search-path resolution,
// disk-cache lookup, and stub fusion (§4.7 step 4) entirely outside this
// package — modcache only owns the concurrency contract around calling it.
// A Resolver that itself imports other modules must call
// modcache.WithInProgress(ctx, name) before recursing so cycles are caught.
type Resolver func(ctx context.Context) (*model.Module, error)

// TryImport implements the §4.7 `try_import` contract for one attempt. On
// StatusRetry the caller should call TryImport again (ImportWithRetries
// does this automatically, up to 5 attempts).
func (c *Cache) TryImport(ctx context.Context, name string, resolve Resolver) (*model.Module, Status) {
	if name == builtinsName {
		c.report(diagnostic.Trace{Event: diagnostic.UndefinedImport, Target: name, Detail: "builtins must be imported through the dedicated path"})
		return nil, StatusError
	}
	if isInProgress(ctx, name) {
		c.report(diagnostic.Trace{Event: diagnostic.RecursiveImport, Target: name})
		return nil, StatusRecursive
	}

	c.mu.Lock()
	existing, found := c.entries[name]
	if found {
		if sent, ok := existing.(*sentinel); ok {
			c.mu.Unlock()
			return c.awaitSentinel(ctx, sent)
		}
		mod := existing.(*model.Module)
		c.mu.Unlock()
		return mod, StatusOK
	}

	sent := &sentinel{token: uuid.NewString(), done: make(chan struct{})}
	c.entries[name] = sent
	c.mu.Unlock()

	mod, err := resolve(WithInProgress(ctx, name))

	status := StatusOK
	if err != nil {
		if err == context.DeadlineExceeded || err == context.Canceled {
			status = StatusTimeout
			c.report(diagnostic.Trace{Event: diagnostic.ImportTimeout, Target: name})
		} else {
			status = StatusError
		}
	}

	c.mu.Lock()
	if status == StatusOK && mod != nil {
		c.entries[name] = mod
	} else {
		// Timeout and error both vacate the slot: §4.7/§5 "the sentinel
		// remains for eventual clean-up by the retry loop" is satisfied by
		// a fresh TryImport call installing a brand-new sentinel next time,
		// rather than resurrecting this one (which would race its own
		// done channel against a second close).
		delete(c.entries, name)
	}
	sent.result, sent.status = mod, status
	close(sent.done)
	c.mu.Unlock()

	if status == StatusOK {
		c.report(diagnostic.Trace{Event: diagnostic.Import, Target: name})
	}
	return mod, status
}

func (c *Cache) awaitSentinel(ctx context.Context, sent *sentinel) (*model.Module, Status) {
	select {
	case <-sent.done:
		if sent.status == StatusTimeout {
			return nil, StatusRetry
		}
		return sent.result, sent.status
	case <-ctx.Done():
		return nil, StatusTimeout
	}
}

// ImportWithRetries calls TryImport up to 5 times (§4.7 "a caller retries
// up to 5 times before giving up and logging"). Both StatusRetry (a waiter
// observed its sentinel time out) and StatusTimeout (this call's own
// resolution timed out) are retryable; anything else is returned
// immediately.
func (c *Cache) ImportWithRetries(ctx context.Context, name string, resolve Resolver) (*model.Module, Status) {
	const maxAttempts = 5
	var mod *model.Module
	var status Status
	for attempt := 0; attempt < maxAttempts; attempt++ {
		mod, status = c.TryImport(ctx, name, resolve)
		if status != StatusRetry && status != StatusTimeout {
			return mod, status
		}
		c.report(diagnostic.Trace{Event: diagnostic.RetryImport, Target: name, Detail: "attempt failed, retrying"})
	}
	return mod, status
}

// Invalidate removes a published module from the cache, e.g. after a
// source file changes on disk.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[name]; ok {
		delete(c.entries, name)
		c.report(diagnostic.Trace{Event: diagnostic.InvalidateCachedModule, Target: name})
	}
}

// Peek returns the published module for name without triggering any
// resolution — used by diagnostics and tests.
func (c *Cache) Peek(name string) (*model.Module, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mod, ok := c.entries[name].(*model.Module)
	return mod, ok
}

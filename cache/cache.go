/*
Package cache provides a two-level (in-memory, then on-disk) store for
parsed trees, keyed by grammar hash and source path, so repeated parses
of unchanged files can be skipped entirely.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2026 The pyparso Authors.

*/
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gopytools/pyparso/cst"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("pyparso.cache")
}

func init() {
	// gob only needs the concrete types that appear behind the
	// cst.Element interface; it resolves the rest structurally.
	gob.Register(&cst.Leaf{})
	gob.Register(&cst.Node{})
	gob.Register(&cst.Suite{})
	gob.Register(&cst.FuncDef{})
	gob.Register(&cst.ClassDef{})
	gob.Register(&cst.IfStmt{})
}

const formatVersion = 1

// envelope is what's stored on disk, gob-encoded, under one file per
// (grammarHash, path).
type envelope struct {
	FormatVersion int
	GrammarHash   string
	Path          string
	Lines         []string
	Tree          *cst.Node
	LastUsed      time.Time
}

// entry is the in-memory record; it holds the same payload the disk
// envelope carries (lines, tree and last-used time).
type entry struct {
	lines    []string
	tree     *cst.Node
	lastUsed time.Time
}

// Cache holds parsed trees in memory, falling back to files under dir. A
// zero-value Cache with an empty dir runs memory-only: Save will not
// error, it simply keeps no disk copy.
type Cache struct {
	mu    sync.RWMutex
	mem   map[string]map[string]*entry // grammarHash -> path -> entry
	dir   string
	strip sync.Mutex // serializes stripe-map creation, not entries
	locks map[string]*sync.Mutex

	// MaxEntries bounds the in-memory set across all grammars; 0 means
	// unbounded. MaxAge evicts entries whose lastUsed is older than this
	// horizon on the next Evict call; 0 disables age-based eviction.
	MaxEntries int
	MaxAge     time.Duration
}

// New builds a Cache backed by dir (created lazily on first Save). An
// empty dir disables the disk tier.
func New(dir string) *Cache {
	return &Cache{
		mem:   map[string]map[string]*entry{},
		dir:   dir,
		locks: map[string]*sync.Mutex{},
	}
}

func (c *Cache) pathLock(key string) *sync.Mutex {
	c.strip.Lock()
	defer c.strip.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

// Load returns the cached tree for (grammarHash, path) along with the
// source lines it was parsed from, checking memory first and the disk
// tier second. The caller is responsible for comparing the returned
// lines against the current file contents to decide whether the entry
// is still valid.
func (c *Cache) Load(grammarHash, path string) (tree *cst.Node, lines []string, ok bool) {
	c.mu.RLock()
	if byPath, found := c.mem[grammarHash]; found {
		if e, found := byPath[path]; found {
			c.mu.RUnlock()
			c.touch(grammarHash, path)
			return e.tree, e.lines, true
		}
	}
	c.mu.RUnlock()

	if c.dir == "" {
		return nil, nil, false
	}

	lock := c.pathLock(grammarHash + "\x00" + path)
	lock.Lock()
	defer lock.Unlock()

	env, err := c.readDisk(grammarHash, path)
	if err != nil {
		if !os.IsNotExist(err) {
			tracer().Infof("cache: disk read miss for %s: %v", path, err)
		}
		return nil, nil, false
	}

	c.mu.Lock()
	c.storeLocked(grammarHash, path, env.Tree, env.Lines)
	c.mu.Unlock()
	return env.Tree, env.Lines, true
}

// Save records tree under (grammarHash, path) in memory and, if a disk
// directory was configured, persists it too. Disk I/O failures are
// logged and otherwise ignored — an unwritable cache directory must
// never turn into a parse failure.
func (c *Cache) Save(grammarHash, path string, tree *cst.Node, lines []string) {
	c.mu.Lock()
	c.storeLocked(grammarHash, path, tree, lines)
	c.evictLocked()
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	lock := c.pathLock(grammarHash + "\x00" + path)
	lock.Lock()
	defer lock.Unlock()
	if err := c.writeDisk(grammarHash, path, tree, lines); err != nil {
		tracer().Infof("cache: disk save failed for %s: %v", path, err)
	}
}

func (c *Cache) storeLocked(grammarHash, path string, tree *cst.Node, lines []string) {
	byPath, ok := c.mem[grammarHash]
	if !ok {
		byPath = map[string]*entry{}
		c.mem[grammarHash] = byPath
	}
	byPath[path] = &entry{lines: lines, tree: tree, lastUsed: time.Now()}
}

func (c *Cache) touch(grammarHash, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if byPath, ok := c.mem[grammarHash]; ok {
		if e, ok := byPath[path]; ok {
			e.lastUsed = time.Now()
		}
	}
}

// Evict runs the eviction policy (count threshold and age horizon)
// immediately. Save also runs it after every insert; calling it directly
// additionally drops entries that have aged past MaxAge since the last
// Save, and applies a lowered MaxAge/MaxEntries at once.
func (c *Cache) Evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked()
}

func (c *Cache) evictLocked() {
	if c.MaxAge > 0 {
		cutoff := time.Now().Add(-c.MaxAge)
		for hash, byPath := range c.mem {
			for path, e := range byPath {
				if e.lastUsed.Before(cutoff) {
					delete(byPath, path)
				}
			}
			if len(byPath) == 0 {
				delete(c.mem, hash)
			}
		}
	}
	if c.MaxEntries <= 0 {
		return
	}
	total := 0
	for _, byPath := range c.mem {
		total += len(byPath)
	}
	if total <= c.MaxEntries {
		return
	}
	type key struct {
		hash, path string
		lastUsed   time.Time
	}
	var all []key
	for hash, byPath := range c.mem {
		for path, e := range byPath {
			all = append(all, key{hash, path, e.lastUsed})
		}
	}
	for len(all) > c.MaxEntries {
		oldest := 0
		for i := range all {
			if all[i].lastUsed.Before(all[oldest].lastUsed) {
				oldest = i
			}
		}
		delete(c.mem[all[oldest].hash], all[oldest].path)
		all = append(all[:oldest], all[oldest+1:]...)
	}
}

// diskPath lays files out as <dir>/<hash[:2]>/<hash>/<sha256(path)>.cache,
// fanning out by hash prefix so a single directory never holds every
// grammar's cache entries.
func (c *Cache) diskPath(grammarHash, path string) string {
	sum := sha256.Sum256([]byte(path))
	name := fmt.Sprintf("%x.cache", sum)
	prefix := grammarHash
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return filepath.Join(c.dir, prefix, grammarHash, name)
}

func (c *Cache) readDisk(grammarHash, path string) (*envelope, error) {
	data, err := os.ReadFile(c.diskPath(grammarHash, path))
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, err
	}
	if env.FormatVersion != formatVersion || env.GrammarHash != grammarHash || env.Path != path {
		return nil, fmt.Errorf("cache: stale or mismatched envelope for %s", path)
	}
	cst.RelinkParents(env.Tree)
	return &env, nil
}

func (c *Cache) writeDisk(grammarHash, path string, tree *cst.Node, lines []string) error {
	env := envelope{
		FormatVersion: formatVersion,
		GrammarHash:   grammarHash,
		Path:          path,
		Lines:         lines,
		Tree:          tree,
		LastUsed:      time.Now(),
	}
	return c.writeEnvelope(grammarHash, path, env)
}

// writeEnvelope gob-encodes env to this (grammarHash, path)'s disk slot.
// Split out from writeDisk so tests can fabricate a mismatched envelope
// (e.g. a stale FormatVersion) without duplicating the encode/rename
// dance.
func (c *Cache) writeEnvelope(grammarHash, path string, env envelope) error {
	dst := c.diskPath(grammarHash, path)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&env); err != nil {
		return err
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

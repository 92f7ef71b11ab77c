// File: arena/allocator.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Allocator construction, configuration and lifecycle.

package arena

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/google/btree"
	"github.com/momentics/hioload-tasks/api"
	"github.com/rs/zerolog"
)

// SizeClass describes a fixed-size free list created at construction.
type SizeClass struct {
	Size  int `yaml:"size"`
	Count int `yaml:"count"`
}

// Config tunes an Allocator.
type Config struct {
	// Size of the first arena; rounded up to PageSize. Must be positive.
	Size int
	// ThreadSafe serialises every operation under one mutex.
	ThreadSafe bool
	// Alignment of block sizes and payloads; power of two >= MinAlignment.
	// Zero selects DefaultAlignment.
	Alignment int
	// SizeClasses are created in order after the first arena is mapped.
	SizeClasses []SizeClass
	// MaxArenas bounds chain growth; zero means unbounded.
	MaxArenas int
	// Logger receives diagnostics; nil disables logging.
	Logger *zerolog.Logger
}

// DefaultConfig returns a thread-safe configuration with the given arena size.
func DefaultConfig(size int) Config {
	return Config{
		Size:       size,
		ThreadSafe: true,
		Alignment:  DefaultAlignment,
	}
}

// Ensure compile-time interface compliance.
var _ api.Allocator = (*Allocator)(nil)

// Allocator is a chain of arenas sharing one best-fit free index.
type Allocator struct {
	mu         sync.Mutex
	threadSafe bool

	alignment int
	arenaSize int
	maxArenas int

	regions []*region
	index   *btree.BTreeG[freeKey]
	classes []*sizeClass

	allocCount uint64
	freeCount  uint64
	mergeCount uint64
	growCount  uint64

	closed bool
	log    zerolog.Logger
}

// New creates a thread-safe allocator whose first arena holds size bytes.
func New(size int) (*Allocator, error) {
	return NewWithConfig(DefaultConfig(size))
}

// NewWithConfig creates an allocator and maps its first arena.
func NewWithConfig(cfg Config) (*Allocator, error) {
	if cfg.Size <= 0 || cfg.Size > MaxAllocSize {
		return nil, fmt.Errorf("%w: arena size %d", ErrInvalidSize, cfg.Size)
	}
	if cfg.Alignment == 0 {
		cfg.Alignment = DefaultAlignment
	}
	if !isPowerOfTwo(cfg.Alignment) || cfg.Alignment < MinAlignment {
		return nil, fmt.Errorf("%w: alignment %d", ErrInvalidSize, cfg.Alignment)
	}
	if len(cfg.SizeClasses) > MaxSizeClasses {
		return nil, ErrTooManyClasses
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "arena").Logger()
	}
	a := &Allocator{
		threadSafe: cfg.ThreadSafe,
		alignment:  cfg.Alignment,
		arenaSize:  alignUp(cfg.Size, PageSize),
		maxArenas:  cfg.MaxArenas,
		index:      btree.NewG[freeKey](16, lessFreeKey),
		log:        log,
	}
	if err := a.growLocked(a.arenaSize); err != nil {
		return nil, err
	}
	for _, sc := range cfg.SizeClasses {
		if _, err := a.AddSizeClass(sc.Size, sc.Count); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("size class %d: %w", sc.Size, err)
		}
	}
	a.log.Debug().
		Int("arena_size", a.arenaSize).
		Int("alignment", a.alignment).
		Bool("thread_safe", a.threadSafe).
		Msg("allocator created")
	return a, nil
}

func (a *Allocator) lock() {
	if a.threadSafe {
		a.mu.Lock()
	}
}

func (a *Allocator) unlock() {
	if a.threadSafe {
		a.mu.Unlock()
	}
}

// Alignment returns the configured block alignment.
func (a *Allocator) Alignment() int { return a.alignment }

// Close unmaps every arena. Later calls on the allocator fail with ErrClosed.
func (a *Allocator) Close() error {
	a.lock()
	defer a.unlock()
	if a.closed {
		return ErrClosed
	}
	a.closed = true
	var firstErr error
	for _, r := range a.regions {
		if err := r.unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.regions = nil
	a.index.Clear(false)
	a.classes = nil
	return firstErr
}

// growLocked appends an arena large enough to hold a block of need bytes.
func (a *Allocator) growLocked(need int) error {
	if a.maxArenas > 0 && len(a.regions) >= a.maxArenas {
		return ErrOutOfMemory
	}
	size := a.arenaSize
	if n := alignUp(need, PageSize); n > size {
		size = n
	}
	mem, release, err := mapRegion(size)
	if err != nil {
		a.log.Error().Err(err).Int("size", size).Msg("arena map failed")
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	r := newRegion(len(a.regions), mem, release)
	r.reset()
	a.regions = append(a.regions, r)
	a.linkFreeLocked(r, 0)
	if len(a.regions) > 1 {
		a.growCount++
		a.log.Debug().Int("arena", r.id).Int("size", size).Msg("arena chain grown")
	}
	return nil
}

// locateLocked maps a payload span back to its arena and block offset.
func (a *Allocator) locateLocked(p []byte) (*region, int, error) {
	if cap(p) == 0 {
		return nil, 0, ErrInvalidPointer
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(p)))
	for _, r := range a.regions {
		lo := r.base + uintptr(HeaderSize)
		hi := r.base + uintptr(r.size())
		if addr < lo || addr >= hi {
			continue
		}
		off := int(addr-r.base) - HeaderSize
		if off%MinAlignment != 0 {
			return nil, 0, ErrInvalidPointer
		}
		return r, off, nil
	}
	return nil, 0, ErrInvalidPointer
}

// checkLiveLocked validates the header of an allocated block.
func (a *Allocator) checkLiveLocked(r *region, off int) error {
	h := r.hdr(off)
	if !h.valid() || off+int(h.size) > r.size() {
		return a.integrity(ErrCorruption, r, off)
	}
	if h.flags&flagFree != 0 {
		return a.integrity(ErrDoubleFree, r, off)
	}
	return nil
}

// integrity logs a detected violation; debug builds abort.
func (a *Allocator) integrity(err error, r *region, off int) error {
	a.log.Error().Err(err).Int("arena", r.id).Int("offset", off).Msg("block integrity violation")
	if abortOnIntegrity {
		panic(fmt.Sprintf("arena %d offset %d: %v", r.id, off, err))
	}
	return err
}

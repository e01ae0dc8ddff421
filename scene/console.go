package scene

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// DefaultConsoleSize is the number of entries a console keeps.
const DefaultConsoleSize = 256

// Entry is one console line.
type Entry struct {
	Time    time.Time
	Message string
	Level   zapcore.Level
}

// Console is a bounded log of script output. Once full, the oldest entries
// are overwritten.
type Console struct {
	entries []Entry
	start   int
	count   int
	dropped uint64
	mu      sync.Mutex
}

func NewConsole(size int) *Console {
	if size <= 0 {
		size = DefaultConsoleSize
	}
	return &Console{entries: make([]Entry, size)}
}

func (c *Console) Append(level zapcore.Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := Entry{Time: time.Now(), Level: level, Message: msg}
	if c.count < len(c.entries) {
		c.entries[(c.start+c.count)%len(c.entries)] = e
		c.count++
		return
	}
	c.entries[c.start] = e
	c.start = (c.start + 1) % len(c.entries)
	c.dropped++
}

// Entries returns the buffered entries, oldest first.
func (c *Console) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, c.count)
	for i := range out {
		out[i] = c.entries[(c.start+i)%len(c.entries)]
	}
	return out
}

// Tail returns at most n of the newest entries, oldest first.
func (c *Console) Tail(n int) []Entry {
	all := c.Entries()
	if n >= 0 && n < len(all) {
		return all[len(all)-n:]
	}
	return all
}

func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Dropped returns how many entries were overwritten.
func (c *Console) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start, c.count = 0, 0
}

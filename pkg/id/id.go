package id

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// ID is a 12-byte identifier that sorts by creation time:
// [6 bytes ms timestamp][2 bytes node][4 bytes counter].
type ID [12]byte

// String returns the 24-char hex form.
func (i ID) String() string { return hex.EncodeToString(i[:]) }

// Time returns the millisecond timestamp embedded in i.
func (i ID) Time() time.Time {
	var ms [8]byte
	copy(ms[2:], i[0:6])
	return time.UnixMilli(int64(binary.BigEndian.Uint64(ms[:])))
}

// Compare returns -1, 0 or 1.
func (i ID) Compare(other ID) int { return bytes.Compare(i[:], other[:]) }

// Parse decodes the hex form produced by String.
func Parse(s string) (ID, error) {
	var i ID
	if len(s) != hex.EncodedLen(len(i)) {
		return i, fmt.Errorf("id: invalid length %d", len(s))
	}
	if _, err := hex.Decode(i[:], []byte(s)); err != nil {
		return i, fmt.Errorf("id: %w", err)
	}
	return i, nil
}

// Generator hands out IDs that increase strictly within one process. Live feed
// subscribers and HTTP requests are tagged with them.
type Generator struct {
	node uint16
	now  func() time.Time

	mu     sync.Mutex
	lastMs int64
	count  uint32
}

// NewGenerator returns a Generator stamping node into every ID.
func NewGenerator(node uint16) *Generator {
	return &Generator{node: node, now: time.Now}
}

// Next returns a new ID. A clock that moves backwards is pinned to the last
// seen millisecond; an exhausted counter borrows the next millisecond.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	switch {
	case ms > g.lastMs:
		g.lastMs, g.count = ms, 0
	case g.count == ^uint32(0):
		g.lastMs++
		g.count = 0
	default:
		g.count++
	}

	var i ID
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(g.lastMs))
	copy(i[0:6], buf[2:])
	binary.BigEndian.PutUint16(i[6:8], g.node)
	binary.BigEndian.PutUint32(i[8:12], g.count)
	return i
}

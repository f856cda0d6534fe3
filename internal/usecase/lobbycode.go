package usecase

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

// maxCodeAttempts bounds the search for a free code
const maxCodeAttempts = 1000

// CodeGenerator hands out short lobby codes that are unique among live lobbies
type CodeGenerator struct {
	mu       sync.Mutex
	existing map[string]bool
	length   int
	rng      *rand.Rand
}

// NewCodeGenerator creates a generator producing codes of the given length
func NewCodeGenerator(length int) *CodeGenerator {
	return NewCodeGeneratorWithSource(length, rand.NewSource(time.Now().UnixNano()))
}

// NewCodeGeneratorWithSource creates a generator with a fixed random source
func NewCodeGeneratorWithSource(length int, src rand.Source) *CodeGenerator {
	if length <= 0 {
		length = domain.LobbyCodeLength
	}
	return &CodeGenerator{
		existing: make(map[string]bool),
		length:   length,
		rng:      rand.New(src),
	}
}

// Generate reserves and returns a fresh code. taken reports codes that are in
// use somewhere the generator cannot see (for example a code a client typed).
// ErrNoLobbyCode is returned when every attempt hits a code in use.
func (g *CodeGenerator) Generate(taken func(code string) bool) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := 0; i < maxCodeAttempts; i++ {
		code := g.next()
		if g.existing[code] || (taken != nil && taken(code)) {
			continue
		}
		g.existing[code] = true
		return code, nil
	}
	return "", domain.ErrNoLobbyCode
}

func (g *CodeGenerator) next() string {
	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		b.WriteByte(domain.LobbyCodeCharset[g.rng.Intn(len(domain.LobbyCodeCharset))])
	}
	return b.String()
}

// Release returns a code to the pool once its lobby is gone
func (g *CodeGenerator) Release(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.existing, code)
}

// ActiveCount returns the number of reserved codes
func (g *CodeGenerator) ActiveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.existing)
}

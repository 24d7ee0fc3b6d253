// Package riddles holds the riddle catalog used by riddle challenges and the
// selection and answer-matching rules around it.
package riddles

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/models"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var ErrInvalidCatalog = errors.New("invalid riddle catalog")

// Riddle is an immutable question/answer pair.
type Riddle struct {
	Question   string               `yaml:"question" json:"question"`
	Answer     string               `yaml:"answer" json:"answer"`
	Difficulty constants.Difficulty `yaml:"difficulty" json:"difficulty"`
}

type catalogFile struct {
	Riddles []Riddle `yaml:"riddles"`
}

var defaultCatalog = sync.OnceValue(func() []Riddle {
	catalog, err := LoadCatalog(bytes.NewReader(defaultCatalogYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded riddle catalog: %v", err))
	}
	return catalog
})

// DefaultCatalog returns a copy of the built-in catalog.
func DefaultCatalog() []Riddle {
	return append([]Riddle(nil), defaultCatalog()...)
}

// LoadCatalog parses a YAML riddle pack of the form
//
//	riddles:
//	  - question: "..."
//	    answer: "..."
//	    difficulty: easy|medium|hard
func LoadCatalog(r io.Reader) ([]Riddle, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no riddles", ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	if len(f.Riddles) == 0 {
		return nil, fmt.Errorf("%w: no riddles", ErrInvalidCatalog)
	}
	for i, rd := range f.Riddles {
		if strings.TrimSpace(rd.Question) == "" {
			return nil, fmt.Errorf("%w: riddle %d has no question", ErrInvalidCatalog, i+1)
		}
		if strings.TrimSpace(rd.Answer) == "" {
			return nil, fmt.Errorf("%w: riddle %d has no answer", ErrInvalidCatalog, i+1)
		}
		if !models.ValidDifficulty(rd.Difficulty) {
			return nil, fmt.Errorf("%w: riddle %d has unknown difficulty %q", ErrInvalidCatalog, i+1, rd.Difficulty)
		}
	}
	return f.Riddles, nil
}

// LoadFile reads a riddle pack from disk.
func LoadFile(path string) ([]Riddle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open riddle pack: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// Bank selects riddles from a catalog. It is safe for concurrent use.
type Bank struct {
	mu      sync.Mutex
	catalog []Riddle
	rng     *rand.Rand
}

type Option func(*Bank)

// WithRand fixes the random source, for deterministic selection in tests.
func WithRand(r *rand.Rand) Option {
	return func(b *Bank) { b.rng = r }
}

// WithCatalog replaces the built-in catalog. An empty catalog is ignored.
func WithCatalog(c []Riddle) Option {
	return func(b *Bank) {
		if len(c) > 0 {
			b.catalog = append([]Riddle(nil), c...)
		}
	}
}

func NewBank(opts ...Option) *Bank {
	b := &Bank{catalog: defaultCatalog()}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return b
}

// All returns a copy of the catalog.
func (b *Bank) All() []Riddle {
	return append([]Riddle(nil), b.catalog...)
}

// candidates returns the riddles matching d, or the whole catalog when d is
// empty or nothing matches.
func (b *Bank) candidates(d constants.Difficulty) []Riddle {
	if d == "" {
		return b.catalog
	}
	var out []Riddle
	for _, r := range b.catalog {
		if r.Difficulty == d {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return b.catalog
	}
	return out
}

// PickRandom returns a uniformly random riddle of difficulty d. An empty d
// means any difficulty.
func (b *Bank) PickRandom(d constants.Difficulty) Riddle {
	pool := b.candidates(d)
	b.mu.Lock()
	defer b.mu.Unlock()
	return pool[b.rng.IntN(len(pool))]
}

// PickMany returns up to count distinct riddles of difficulty d.
func (b *Bank) PickMany(count int, d constants.Difficulty) []Riddle {
	if count <= 0 {
		return []Riddle{}
	}
	pool := append([]Riddle(nil), b.candidates(d)...)
	count = min(count, len(pool))

	b.mu.Lock()
	defer b.mu.Unlock()
	// partial Fisher-Yates
	for i := 0; i < count; i++ {
		j := i + b.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count]
}

// CheckAnswer compares trimmed, lowercased answers.
func CheckAnswer(r Riddle, submitted string) bool {
	return normalize(submitted) == normalize(r.Answer)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Hint reveals the first letter and length of the answer.
func Hint(r Riddle) string {
	answer := strings.TrimSpace(r.Answer)
	first, _ := utf8.DecodeRuneInString(answer)
	return fmt.Sprintf("Starts with %q, %d letters", string(unicode.ToUpper(first)), utf8.RuneCountInString(answer))
}

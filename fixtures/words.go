package fixtures

import (
	"bufio"
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/google/uuid"
)

//go:embed words.txt
var defaultWords string

const (
	maxSynthesisAttempts   = 64
	initialSynthesisLength = 8
	maxSynthesisLength     = 32
	collisionsBeforeGrowth = 8
	synthesisLengthStep    = 4
)

// WordSource hands out words for synthetic data. Word and Words draw freely from the pool;
// UniqueWord never returns the same value twice for the lifetime of the source, falling back to
// generated tokens once the pool has been used up.
//
// A WordSource is not safe for concurrent use.
type WordSource struct {
	words     []string
	remaining []string
	used      map[string]struct{}
	rng       *rand.Rand
	synthLen  int
	newToken  func(length int) string
}

// NewWordSource creates a source over the given pool. All randomness comes from rng, so a source
// built with the same pool and seed produces the same sequence.
func NewWordSource(words []string, rng *rand.Rand) *WordSource {
	s := &WordSource{
		words:    append([]string(nil), words...),
		used:     make(map[string]struct{}),
		rng:      rng,
		synthLen: initialSynthesisLength,
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		s.remaining = append(s.remaining, w)
	}
	s.newToken = s.randomToken
	return s
}

// DefaultWords returns the built-in word list.
func DefaultWords() []string {
	return parseWords(defaultWords)
}

// LoadWords reads a newline-separated word list. Surrounding whitespace and blank lines are dropped.
func LoadWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read word list: %w", err)
	}
	return parseWords(string(data)), nil
}

func parseWords(text string) []string {
	var words []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Word returns a random word from the pool, or "" if the pool is empty.
func (s *WordSource) Word() string {
	if len(s.words) == 0 {
		return ""
	}
	return s.words[s.rng.Intn(len(s.words))]
}

// Words returns n random words separated by spaces. Repeats are allowed.
func (s *WordSource) Words(n int) string {
	if len(s.words) == 0 {
		return ""
	}
	words := make([]string, 0, max(n, 0))
	for i := 0; i < n; i++ {
		words = append(words, s.Word())
	}
	return strings.Join(words, " ")
}

// UniqueWord returns a word that this source has never returned from UniqueWord before.
func (s *WordSource) UniqueWord() (string, error) {
	if len(s.remaining) > 0 {
		i := s.rng.Intn(len(s.remaining))
		word := s.remaining[i]
		last := len(s.remaining) - 1
		s.remaining[i] = s.remaining[last]
		s.remaining = s.remaining[:last]
		s.used[word] = struct{}{}
		return word, nil
	}

	collisions := 0
	for attempt := 0; attempt < maxSynthesisAttempts; attempt++ {
		token := s.newToken(s.synthLen)
		if _, taken := s.used[token]; !taken {
			s.used[token] = struct{}{}
			return token, nil
		}
		collisions++
		if collisions%collisionsBeforeGrowth == 0 && s.synthLen < maxSynthesisLength {
			s.synthLen = min(s.synthLen+synthesisLengthStep, maxSynthesisLength)
		}
	}
	return "", fmt.Errorf("%w: %d attempts at length %d all collided", ErrFixtureExhausted,
		maxSynthesisAttempts, s.synthLen)
}

// Used returns how many unique words have been handed out.
func (s *WordSource) Used() int {
	return len(s.used)
}

func (s *WordSource) randomToken(length int) string {
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		return ""
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	if length > len(hex) {
		length = len(hex)
	}
	return hex[:length]
}

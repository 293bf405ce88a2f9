package words

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/anagrams-go/internal/dependencies/random"
)

// MinAnagramLength is the shortest word offered as an anagram
const MinAnagramLength = 3

// Dictionary serves round data from a local word list
type Dictionary struct {
	random random.Random

	mu       sync.RWMutex
	words    []string
	byLength map[int][]string
}

// NewDictionary creates an empty Dictionary
func NewDictionary(rnd random.Random) *Dictionary {
	return &Dictionary{
		random:   rnd,
		byLength: make(map[int][]string),
	}
}

// LoadFromFile loads words from a file (one word per line)
func (d *Dictionary) LoadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	d.LoadWords(words)
	return nil
}

// LoadWords replaces the word list. Words are lowercased and
// non-alphabetic entries are skipped.
func (d *Dictionary) LoadWords(words []string) {
	seen := make(map[string]struct{}, len(words))
	list := make([]string, 0, len(words))
	byLength := make(map[int][]string)
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || !isAlpha(w) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		list = append(list, w)
		byLength[len(w)] = append(byLength[len(w)], w)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.words = list
	d.byLength = byLength
}

// WordCount returns the number of words loaded
func (d *Dictionary) WordCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.words)
}

// RandomWord picks a word of exactly the given length
func (d *Dictionary) RandomWord(ctx context.Context, length int) (string, error) {
	d.mu.RLock()
	candidates := d.byLength[length]
	d.mu.RUnlock()

	if len(candidates) == 0 {
		return "", fmt.Errorf("no words of length %d: %w", length, ErrUnavailable)
	}
	return candidates[d.random.Intn(len(candidates))], nil
}

// Anagrams returns every word of at least MinAnagramLength letters that
// can be spelled from the letters of word, longest first
func (d *Dictionary) Anagrams(ctx context.Context, word string) ([]string, error) {
	available := letterCounts(strings.ToLower(word))

	d.mu.RLock()
	var result []string
	for _, candidate := range d.words {
		if len(candidate) < MinAnagramLength || len(candidate) > len(word) {
			continue
		}
		if spellable(candidate, available) {
			result = append(result, candidate)
		}
	}
	d.mu.RUnlock()

	if len(result) == 0 {
		return nil, fmt.Errorf("no anagrams of %q: %w", word, ErrUnavailable)
	}

	sort.Slice(result, func(i, j int) bool {
		if len(result[i]) != len(result[j]) {
			return len(result[i]) > len(result[j])
		}
		return result[i] < result[j]
	})
	return result, nil
}

func letterCounts(s string) [26]int {
	var counts [26]int
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'a' && c <= 'z' {
			counts[c-'a']++
		}
	}
	return counts
}

func spellable(word string, available [26]int) bool {
	for i := 0; i < len(word); i++ {
		idx := word[i] - 'a'
		available[idx]--
		if available[idx] < 0 {
			return false
		}
	}
	return true
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

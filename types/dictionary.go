// dictionary.go defines DictionaryItems, the ordered key/value option set passed to hardware runtimes.

package types

import (
	"fmt"
	"strings"
)

type DictionaryItem struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type DictionaryItems []DictionaryItem

// Get returns the value of the last item with the given key.
func (s DictionaryItems) Get(key string) (string, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Key == key {
			return s[i].Value, true
		}
	}
	return "", false
}

// Deduplicate keeps only the last occurrence of every key, preserving the
// order of those last occurrences.
func (s DictionaryItems) Deduplicate() DictionaryItems {
	lastIdx := make(map[string]int, len(s))
	for idx, item := range s {
		lastIdx[item.Key] = idx
	}
	result := make(DictionaryItems, 0, len(lastIdx))
	for idx, item := range s {
		if lastIdx[item.Key] != idx {
			continue
		}
		result = append(result, item)
	}
	return result
}

func (s DictionaryItems) String() string {
	var b strings.Builder
	for idx, item := range s {
		if idx > 0 {
			b.WriteByte(',')
		}
		b.WriteString(item.Key)
		b.WriteByte('=')
		b.WriteString(item.Value)
	}
	return b.String()
}

// ParseDictionary parses "key=value" pairs separated by ','. A trailing
// separator is allowed; a pair without '=' is an error.
func ParseDictionary(s string) (DictionaryItems, error) {
	var result DictionaryItems
	for len(s) > 0 {
		pair := s
		rest := ""
		if idx := strings.IndexByte(s, ','); idx >= 0 {
			pair, rest = s[:idx], s[idx+1:]
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("missing '=' in the option '%s'", pair)
		}
		if key == "" {
			return nil, fmt.Errorf("empty key in the option '%s'", pair)
		}
		result = append(result, DictionaryItem{Key: key, Value: value})
		s = rest
	}
	return result, nil
}

package search

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/validation"
	"gopkg.in/yaml.v3"
)

// Document is an indexed knowledge-base entry.
type Document struct {
	ID       string         `yaml:"id"`
	Content  string         `yaml:"content"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "at": true, "be": true, "can": true,
	"do": true, "for": true, "how": true, "i": true, "in": true, "is": true, "it": true,
	"of": true, "on": true, "or": true, "the": true, "to": true, "what": true, "when": true,
	"with": true, "you": true, "long": true, "should": true, "my": true,
}

type indexed struct {
	doc   Document
	terms map[string]bool
}

// InMemoryIndex is a process-local core.Searcher. Documents and queries are
// normalized (lowercase, singularized) and scored by the fraction of query
// terms a document contains. Protected by an RWMutex.
type InMemoryIndex struct {
	mu   sync.RWMutex
	docs []indexed
}

// NewInMemoryIndex creates an index holding docs.
func NewInMemoryIndex(docs ...Document) *InMemoryIndex {
	idx := &InMemoryIndex{}
	for _, d := range docs {
		idx.Add(d)
	}
	return idx
}

// Add indexes a document, generating an id when empty. A document with an
// existing id replaces the previous one.
func (x *InMemoryIndex) Add(doc Document) string {
	x.mu.Lock()
	defer x.mu.Unlock()
	if doc.ID == "" {
		doc.ID = fmt.Sprintf("doc_%d", len(x.docs))
	}
	entry := indexed{doc: doc, terms: termSet(doc.Content)}
	for i := range x.docs {
		if x.docs[i].doc.ID == doc.ID {
			x.docs[i] = entry
			return doc.ID
		}
	}
	x.docs = append(x.docs, entry)
	return doc.ID
}

// Len returns the number of indexed documents.
func (x *InMemoryIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

// Search implements core.Searcher. Results are ordered by descending score
// then insertion order. An empty query matches nothing.
func (x *InMemoryIndex) Search(ctx context.Context, query string, limit int) ([]core.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := termSet(query)
	if len(q) == 0 || limit <= 0 {
		return []core.SearchResult{}, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	results := make([]core.SearchResult, 0, limit)
	for _, d := range x.docs {
		hits := 0
		for t := range q {
			if d.terms[t] {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		md := make(map[string]any, len(d.doc.Metadata))
		for k, v := range d.doc.Metadata {
			md[k] = v
		}
		results = append(results, core.SearchResult{
			ID:       d.doc.ID,
			Content:  d.doc.Content,
			Score:    float64(hits) / float64(len(q)),
			Metadata: md,
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func termSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(validation.Normalize(text)) {
		if !stopWords[t] {
			set[t] = true
		}
	}
	return set
}

type documentFile struct {
	Documents []Document `yaml:"documents"`
}

// LoadDocuments reads a YAML file with a top-level documents list.
func LoadDocuments(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	var f documentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse documents: %w", err)
	}
	return f.Documents, nil
}

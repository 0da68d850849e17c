package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/wikinsight/internal/debuglog"
	"github.com/pders01/wikinsight/internal/storage"
)

type BleveEngine struct {
	store *storage.Store
	idx   bleve.Index
}

// NewBleveEngine creates or opens a Bleve index at indexPath and indexes
// the current history.
func NewBleveEngine(store *storage.Store, indexPath string) (*BleveEngine, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}

	be := &BleveEngine{store: store, idx: idx}
	if err := be.reindexAll(); err != nil {
		idx.Close()
		return nil, err
	}
	return be, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	tldr := bleve.NewTextFieldMapping()
	tldr.Analyzer = standard.Name
	tldr.Store = true

	excerpt := bleve.NewTextFieldMapping()
	excerpt.Analyzer = standard.Name
	excerpt.Store = false

	url := bleve.NewTextFieldMapping()
	url.Analyzer = standard.Name
	url.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("tldr", tldr)
	dm.AddFieldMappingsAt("excerpt", excerpt)
	dm.AddFieldMappingsAt("url", url)

	im.DefaultMapping = dm
	return im
}

func visitDoc(v *storage.Visit) map[string]any {
	return map[string]any{
		"title":   v.Title,
		"tldr":    v.TLDR,
		"excerpt": v.Excerpt,
		"url":     v.URL,
	}
}

func (b *BleveEngine) reindexAll() error {
	visits, err := b.store.RecentVisits(0)
	if err != nil {
		return err
	}

	batch := b.idx.NewBatch()
	for _, v := range visits {
		if err := batch.Index(docIDForVisit(v.Title), visitDoc(v)); err != nil {
			return err
		}
	}
	return b.idx.Batch(batch)
}

func (b *BleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		qs = append(qs,
			fieldMatch(tok, "title", 4.0),
			fieldPrefix(tok, "title", 3.5),
			fieldMatch(tok, "tldr", 2.0),
			fieldPrefix(tok, "tldr", 1.8),
			fieldMatch(tok, "excerpt", 1.0),
			fieldPrefix(tok, "excerpt", 0.8),
			fieldMatch(tok, "url", 0.5),
		)
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"title", "tldr", "url"}
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		title := strings.TrimPrefix(h.ID, "visit:")
		visit, err := b.store.GetVisit(title)
		if err != nil {
			// Index is ahead of the store; rebuild from stored fields.
			visit = &storage.Visit{Title: title}
			if t, ok := h.Fields["tldr"].(string); ok {
				visit.TLDR = t
			}
			if u, ok := h.Fields["url"].(string); ok {
				visit.URL = u
			}
		}
		out = append(out, &Result{
			Visit:   visit,
			Score:   h.Score,
			Matches: []Match{{Field: "title", Text: visit.Title, Weight: h.Score}},
		})
	}
	return out, nil
}

func fieldMatch(tok, field string, boost float64) bleveQuery.Query {
	q := bleve.NewMatchQuery(tok)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func fieldPrefix(tok, field string, boost float64) bleveQuery.Query {
	q := bleve.NewPrefixQuery(tok)
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

// OnVisitRecorded (re)indexes a single visit.
func (b *BleveEngine) OnVisitRecorded(visit *storage.Visit) {
	if visit == nil {
		return
	}
	if err := b.idx.Index(docIDForVisit(visit.Title), visitDoc(visit)); err != nil {
		debuglog.Warnf("indexing %q: %v", visit.Title, err)
	}
}

func (b *BleveEngine) OnVisitDeleted(title string) {
	if err := b.idx.Delete(docIDForVisit(title)); err != nil {
		debuglog.Warnf("removing %q from index: %v", title, err)
	}
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (b *BleveEngine) Close() error {
	return b.idx.Close()
}

func docIDForVisit(title string) string { return "visit:" + title }

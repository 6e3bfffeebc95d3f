package catalog

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand returns queued values in order.
type fixedRand struct{ values []int }

func (f *fixedRand) IntN(n int) int {
	v := f.values[0]
	f.values = f.values[1:]
	return v % n
}

func TestRandomIndex_InclusiveOneBased(t *testing.T) {
	c := New(map[string]int{"science": 10}, nil, WithRand(&fixedRand{values: []int{0, 9}}))

	first, err := c.RandomIndex("science")
	require.NoError(t, err)
	assert.Equal(t, 1, first, "lowest draw maps to index 1")

	last, err := c.RandomIndex("science")
	require.NoError(t, err)
	assert.Equal(t, 10, last, "highest draw maps to index count")
}

func TestRandomIndex_CoversWholeRange(t *testing.T) {
	c := New(map[string]int{"science": 10}, nil, WithRand(rand.New(rand.NewPCG(1, 2))))

	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		idx, err := c.RandomIndex("science")
		require.NoError(t, err)
		require.GreaterOrEqual(t, idx, 1)
		require.LessOrEqual(t, idx, 10)
		seen[idx] = true
	}
	assert.Len(t, seen, 10)
}

func TestRandomIndex_UnknownCategory(t *testing.T) {
	c := New(map[string]int{"science": 10, "empty": 0}, nil)

	for _, name := range []string{"art", "empty"} {
		_, err := c.RandomIndex(name)
		assert.ErrorIs(t, err, ErrUnknownCategory, name)
	}
}

func TestRecord(t *testing.T) {
	c := New(
		map[string]int{"science": 3},
		map[string][]Record{"science": {{Index: 2, Question: "q2", Answer: "a2"}}},
	)

	r, ok := c.Record("science", 2)
	assert.True(t, ok)
	assert.Equal(t, Record{Index: 2, Question: "q2", Answer: "a2"}, r)

	// every index RandomIndex can produce is safe to look up
	for idx := 1; idx <= c.CategoryCount("science"); idx++ {
		r, _ := c.Record("science", idx)
		assert.Equal(t, idx, r.Index)
	}

	r, ok = c.Record("art", 1)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Index)
}

func TestCategories_Sorted(t *testing.T) {
	c := New(map[string]int{"science": 3, "art": 2, "history": 1, "none": -1}, nil)
	assert.Equal(t, []Category{
		{Name: "art", Count: 2},
		{Name: "history", Count: 1},
		{Name: "science", Count: 3},
	}, c.Categories())
	assert.Zero(t, c.CategoryCount("none"))
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]int
		wantErr bool
	}{
		{"valid", `{"science": 10, "history": 4}`, map[string]int{"science": 10, "history": 4}, false},
		{"not json", `<html>`, nil, true},
		{"empty", `{}`, nil, true},
		{"zero count", `{"science": 0}`, nil, true},
		{"negative count", `{"science": -2}`, nil, true},
		{"wrong type", `{"science": "ten"}`, nil, true},
		{"metadata keys skipped", `{"science": 10, "history": 4, "version": "2024-05-01", "meta": {"built": 1}}`, map[string]int{"science": 10, "history": 4}, false},
		{"bad counts skipped", `{"science": 10, "art": 0, "music": -1, "film": 2.5, "": 3}`, map[string]int{"science": 10}, false},
		{"only metadata", `{"version": "2024-05-01"}`, nil, true},
		{"not an object", `[1, 2]`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIndex(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadIndex)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"science": 10}`))
	}))
	defer srv.Close()

	counts, err := LoadIndex(context.Background(), srv.Client(), srv.URL+"/index.json")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"science": 10}, counts)

	_, err = LoadIndex(context.Background(), srv.Client(), srv.URL+"/missing.json")
	assert.ErrorIs(t, err, ErrBadIndex)
}

func TestParseDataset(t *testing.T) {
	valid := `
category: science
questions:
  - index: 1
    question: q
    answer: a
`
	ds, err := ParseDataset(strings.NewReader(valid))
	require.NoError(t, err)
	assert.Equal(t, "science", ds.Category)
	assert.Equal(t, []Record{{Index: 1, Question: "q", Answer: "a"}}, ds.Questions)

	for name, input := range map[string]string{
		"zero index":    "questions:\n  - index: 0\n",
		"duplicate":     "questions:\n  - index: 1\n  - index: 1\n",
		"unknown field": "questions:\n  - index: 1\n    hint: nope\n",
	} {
		_, err := ParseDataset(strings.NewReader(input))
		assert.Error(t, err, name)
	}
}

func TestLoadDatasets(t *testing.T) {
	fsys := fstest.MapFS{
		"art.yml":      {Data: []byte("questions:\n  - index: 1\n    question: q\n    answer: a\n")},
		"science.yaml": {Data: []byte("category: physics\nquestions:\n  - index: 2\n    question: q\n    answer: a\n")},
		"README.md":    {Data: []byte("ignored")},
	}

	got, err := LoadDatasets(fsys)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, got["art"], 1, "category falls back to file name")
	assert.Len(t, got["physics"], 1, "category from file wins")
}

func TestBundledDatasets(t *testing.T) {
	got, err := BundledDatasets()
	require.NoError(t, err)
	for _, name := range []string{"science", "history", "literature"} {
		assert.NotEmpty(t, got[name], name)
	}
}

func TestLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"science": 5, "history": 4}`))
	}))
	defer srv.Close()

	c, err := Load(context.Background(), Config{IndexURL: srv.URL, Client: srv.Client()}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, c.CategoryCount("science"))

	r, ok := c.Record("history", 1)
	assert.True(t, ok)
	assert.Contains(t, r.Answer, "Magna Carta")
}

func TestLoad_IndexFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), Config{IndexURL: srv.URL, Client: srv.Client()}, nil)
	assert.ErrorIs(t, err, ErrBadIndex)
}

func TestLoad_MissingDatasetDirIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"science": 5}`))
	}))
	defer srv.Close()

	c, err := Load(context.Background(), Config{
		IndexURL:   srv.URL,
		DatasetDir: t.TempDir() + "/does-not-exist",
		Client:     srv.Client(),
	}, nil)
	require.NoError(t, err)
	_, ok := c.Record("science", 1)
	assert.False(t, ok)
}

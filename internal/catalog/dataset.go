package catalog

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var bundled embed.FS

// Dataset is the on-disk form of one category's question text.
type Dataset struct {
	Category  string   `yaml:"category"`
	Questions []Record `yaml:"questions"`
}

// ParseDataset decodes one YAML dataset and checks its records.
func ParseDataset(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("unable to decode dataset: %w", err)
	}

	seen := make(map[int]bool, len(ds.Questions))
	for _, q := range ds.Questions {
		if q.Index < 1 {
			return Dataset{}, fmt.Errorf("dataset %q: question index %d out of range", ds.Category, q.Index)
		}
		if seen[q.Index] {
			return Dataset{}, fmt.Errorf("dataset %q: duplicate question index %d", ds.Category, q.Index)
		}
		seen[q.Index] = true
	}
	return ds, nil
}

// LoadDatasets reads every *.yaml / *.yml file at the root of fsys. The
// category is taken from the file, or from the file name when unset.
func LoadDatasets(fsys fs.FS) (map[string][]Record, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("unable to list datasets: %w", err)
	}

	out := make(map[string][]Record)
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		f, err := fsys.Open(e.Name())
		if err != nil {
			return nil, fmt.Errorf("unable to open dataset: %w", err)
		}
		ds, err := ParseDataset(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}

		name := ds.Category
		if name == "" {
			name = strings.TrimSuffix(e.Name(), ext)
		}
		out[name] = append(out[name], ds.Questions...)
	}
	return out, nil
}

// BundledDatasets returns the question text compiled into the binary.
func BundledDatasets() (map[string][]Record, error) {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		return nil, err
	}
	return LoadDatasets(sub)
}

// DirDatasets reads datasets from a directory on disk.
func DirDatasets(dir string) (map[string][]Record, error) {
	return LoadDatasets(os.DirFS(dir))
}

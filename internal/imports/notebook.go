package imports

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Notebook is the subset of the nbformat document relevant to detection.
type Notebook struct {
	Kernel  string
	Modules []string
}

type notebookDoc struct {
	Cells    []notebookCell   `json:"cells"`
	Metadata notebookMetadata `json:"metadata"`
}

type notebookCell struct {
	CellType string     `json:"cell_type"`
	Source   cellSource `json:"source"`
}

type notebookMetadata struct {
	Kernelspec struct {
		Name string `json:"name"`
	} `json:"kernelspec"`
}

// cellSource accepts both nbformat encodings of cell source: a single string
// or a list of line strings.
type cellSource []string

func (s *cellSource) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = cellSource{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = cellSource(many)
	return nil
}

// ScanNotebookFile parses a .ipynb document from disk.
func ScanNotebookFile(path string) (Notebook, error) {
	f, err := os.Open(path)
	if err != nil {
		return Notebook{}, err
	}
	defer f.Close()
	return ScanNotebook(f)
}

// ScanNotebook extracts the imported top-level modules from the code cells of
// a notebook, along with the kernel name recorded in its metadata.
func ScanNotebook(r io.Reader) (Notebook, error) {
	var doc notebookDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Notebook{}, fmt.Errorf("parse notebook: %w", err)
	}

	seen := make(map[string]struct{})
	for _, cell := range doc.Cells {
		if cell.CellType != "code" {
			continue
		}
		mods, err := Scan(strings.NewReader(strings.Join(cell.Source, "")))
		if err != nil {
			return Notebook{}, err
		}
		for _, m := range mods {
			seen[m] = struct{}{}
		}
	}

	nb := Notebook{Kernel: doc.Metadata.Kernelspec.Name}
	for m := range seen {
		nb.Modules = append(nb.Modules, m)
	}
	sort.Strings(nb.Modules)
	return nb, nil
}

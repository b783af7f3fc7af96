package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/jeryldev/pyworks/internal/imports"
)

type memoryIndex struct {
	mu       sync.RWMutex
	versions map[string]string
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{
		versions: map[string]string{
			"numpy":      "2.3.2",
			"pandas":     "2.3.1",
			"matplotlib": "3.10.5",
			"requests":   "2.32.4",
			"ipykernel":  "6.30.1",
		},
	}
}

func main() {
	idx := newMemoryIndex()

	http.HandleFunc("/pypi/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/pypi/")
		name, ok := strings.CutSuffix(rest, "/json")
		if !ok || name == "" {
			http.Error(w, "not found", 404)
			return
		}
		name = imports.Normalize(name)

		switch r.Method {
		case http.MethodGet:
			idx.mu.RLock()
			version, found := idx.versions[name]
			idx.mu.RUnlock()
			if !found {
				http.Error(w, "not found", 404)
				return
			}
			payload := map[string]any{
				"info": map[string]string{"name": name, "version": version},
			}
			_ = json.NewEncoder(w).Encode(payload)

		case http.MethodPost:
			defer r.Body.Close()
			var body struct {
				Version string `json:"version"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			idx.mu.Lock()
			idx.versions[name] = body.Version
			idx.mu.Unlock()
			fmt.Println("Seeded", name, body.Version)
			w.WriteHeader(200)

		default:
			http.Error(w, "method not allowed", 405)
		}
	})

	log.Println("pypistub listening on :8080")
	log.Fatal(http.ListenAndServe(":8080", nil))
}

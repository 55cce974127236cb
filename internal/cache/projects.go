package cache

import (
	"encoding/json"
	"strings"

	"github.com/pro-prioritet/tracker/internal/logx"
	"github.com/pro-prioritet/tracker/internal/projects/domain"
)

// namespacePrefix scopes cached project sets per user so multiple users'
// sets coexist in one store.
const namespacePrefix = "projects_"

// NamespaceKey derives the storage key for a user's cached project set.
func NamespaceKey(email string) string {
	return namespacePrefix + email
}

// Projects reads and writes cached project sets. Every failure at this
// boundary is converted to "no data" and logged; nothing propagates to the
// synchronizer.
type Projects struct {
	store Store
	log   *logx.Logger
}

func NewProjects(store Store) *Projects {
	return &Projects{store: store, log: logx.New("cache")}
}

// Read returns the last-written project list for a namespace key. Absent or
// malformed entries report ok=false.
func (p *Projects) Read(key string) ([]domain.Project, bool) {
	raw, ok := p.store.Get(key)
	if !ok {
		return nil, false
	}
	var list []domain.Project
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		p.log.Errorf("read", "key=%s malformed cache entry: %v", key, err)
		return nil, false
	}
	if list == nil {
		list = []domain.Project{}
	}
	return list, true
}

// Write overwrites the stored list for a key. It does not merge with prior
// content. Storage errors are logged only.
func (p *Projects) Write(key string, list []domain.Project) {
	if list == nil {
		list = []domain.Project{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		p.log.Errorf("write", "key=%s marshal: %v", key, err)
		return
	}
	if err := p.store.Set(key, string(raw)); err != nil {
		p.log.Errorf("write", "key=%s set: %v", key, err)
	}
}

// ScanNamespaces returns every project-set key in the store, in the store's
// iteration order. "First non-empty match" over this sequence is a display
// heuristic for the anonymous view, not a correctness guarantee.
func (p *Projects) ScanNamespaces() []string {
	var keys []string
	for _, k := range p.store.Keys() {
		if !strings.HasPrefix(k, namespacePrefix) {
			continue
		}
		// Keys written against a missing identity carry no usable set.
		if k == namespacePrefix || strings.Contains(k, "undefined") {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

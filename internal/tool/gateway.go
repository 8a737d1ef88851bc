package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/marcelocantos/erpkit/internal/fixture"
	"github.com/marcelocantos/erpkit/internal/gate"
)

// ErrObjectNotFound is returned for unknown repository objects.
var ErrObjectNotFound = errors.New("repository object not found")

// ObjectRef identifies a repository object.
type ObjectRef struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Package     string `json:"package,omitempty"`
	Description string `json:"description,omitempty"`
}

// ObjectSource is a repository object with its source.
type ObjectSource struct {
	ObjectRef
	Source string `json:"source"`
	Lines  int    `json:"lines"`
}

// Deployment is the outcome of ImportArtifact.
type Deployment struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Transport  string    `json:"transport"`
	Status     string    `json:"status"`
	ImportedAt time.Time `json:"importedAt"`
}

// Activation is the outcome of ActivateObject.
type Activation struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Transport   string    `json:"transport"`
	Status      string    `json:"status"`
	ActivatedAt time.Time `json:"activatedAt"`
}

// Gateway is the repository and write capability of an SAP system:
// reads for searchObjects/getObjectSource and writes for the config tools.
type Gateway interface {
	SearchObjects(ctx context.Context, query, objectType string, maxResults int) ([]ObjectRef, error)
	GetObjectSource(ctx context.Context, objectType, name string) (*ObjectSource, error)
	ImportArtifact(ctx context.Context, a gate.Artifact) (*Deployment, error)
	ActivateObject(ctx context.Context, objectType, name, transport string) (*Activation, error)
}

// MockGateway serves the fixture repository and keeps imported artifacts
// in memory.
type MockGateway struct {
	mu       sync.RWMutex
	imported map[string]fixture.Object // key: type/NAME
	active   map[string]bool
	now      func() time.Time
}

// NewMockGateway creates a gateway over the fixture repository.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		imported: make(map[string]fixture.Object),
		active:   make(map[string]bool),
		now:      time.Now,
	}
}

func objectKey(objectType, name string) string {
	return strings.ToLower(objectType) + "/" + strings.ToUpper(name)
}

func (g *MockGateway) objects() []fixture.Object {
	objs := fixture.SAPObjects()
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, o := range g.imported {
		objs = append(objs, o)
	}
	sort.Slice(objs, func(i, j int) bool {
		if objs[i].Type != objs[j].Type {
			return objs[i].Type < objs[j].Type
		}
		return objs[i].Name < objs[j].Name
	})
	return objs
}

// SearchObjects matches query as a case-insensitive substring, with *
// as a wildcard, against object names and descriptions.
func (g *MockGateway) SearchObjects(_ context.Context, query, objectType string, maxResults int) ([]ObjectRef, error) {
	if maxResults <= 0 {
		maxResults = 50
	}
	q := strings.ToUpper(strings.Trim(query, "*"))
	parts := strings.Split(q, "*")
	out := []ObjectRef{}
	for _, o := range g.objects() {
		if objectType != "" && !strings.EqualFold(o.Type, objectType) {
			continue
		}
		if !containsAll(strings.ToUpper(o.Name), parts) && !containsAll(strings.ToUpper(o.Description), parts) {
			continue
		}
		out = append(out, ObjectRef{Type: o.Type, Name: o.Name, Package: o.Package, Description: o.Description})
		if len(out) == maxResults {
			break
		}
	}
	return out, nil
}

// containsAll reports whether s contains parts in order.
func containsAll(s string, parts []string) bool {
	for _, p := range parts {
		i := strings.Index(s, p)
		if i < 0 {
			return false
		}
		s = s[i+len(p):]
	}
	return true
}

func (g *MockGateway) lookup(objectType, name string) (fixture.Object, bool) {
	g.mu.RLock()
	o, ok := g.imported[objectKey(objectType, name)]
	g.mu.RUnlock()
	if ok {
		return o, true
	}
	return fixture.SAPObject(objectType, name)
}

func (g *MockGateway) GetObjectSource(_ context.Context, objectType, name string) (*ObjectSource, error) {
	o, ok := g.lookup(objectType, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrObjectNotFound, objectType, name)
	}
	return &ObjectSource{
		ObjectRef: ObjectRef{Type: o.Type, Name: o.Name, Package: o.Package, Description: o.Description},
		Source:    o.Source,
		Lines:     strings.Count(strings.TrimRight(o.Source, "\n"), "\n") + 1,
	}, nil
}

func (g *MockGateway) ImportArtifact(_ context.Context, a gate.Artifact) (*Deployment, error) {
	desc, _ := a.Metadata["description"].(string)
	pkg, _ := a.Metadata["package"].(string)
	if pkg == "" {
		pkg = "$TMP"
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	key := objectKey(string(a.Type), a.Name)
	g.imported[key] = fixture.Object{
		Type:        string(a.Type),
		Name:        strings.ToUpper(a.Name),
		Package:     pkg,
		Description: desc,
		Source:      a.Source,
	}
	delete(g.active, key)
	return &Deployment{
		Name:       strings.ToUpper(a.Name),
		Type:       string(a.Type),
		Transport:  a.Transport,
		Status:     "imported",
		ImportedAt: g.now().UTC(),
	}, nil
}

func (g *MockGateway) ActivateObject(_ context.Context, objectType, name, transport string) (*Activation, error) {
	if _, ok := g.lookup(objectType, name); !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrObjectNotFound, objectType, name)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active[objectKey(objectType, name)] = true
	return &Activation{
		Name:        strings.ToUpper(name),
		Type:        objectType,
		Transport:   transport,
		Status:      "active",
		ActivatedAt: g.now().UTC(),
	}, nil
}

// Active reports whether an object was activated through the gateway.
func (g *MockGateway) Active(objectType, name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active[objectKey(objectType, name)]
}

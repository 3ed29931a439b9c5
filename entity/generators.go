package entity

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces primary-key values for fields declaring a generator.
type IDGenerator interface {
	Generate() (any, error)
	Type() string
}

// UUIDGenerator generates UUID v4 strings
type UUIDGenerator struct{}

func (g UUIDGenerator) Generate() (any, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id.String(), nil
}

func (g UUIDGenerator) Type() string {
	return "uuid"
}

// ULIDGenerator generates monotonic ULID strings
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGenerator) Generate() (any, error) {
	// MonotonicEntropy is not safe for concurrent use
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

func (g *ULIDGenerator) Type() string {
	return "ulid"
}

var generators = map[string]IDGenerator{
	"uuid": UUIDGenerator{},
	"ulid": NewULIDGenerator(),
}

func GeneratorFor(name string) (IDGenerator, error) {
	g, ok := generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown id generator %q", name)
	}
	return g, nil
}

// FillGenerated sets generated values for every field with a generator that
// has no value in vs yet.
func (e *Entity) FillGenerated(vs Values) (Values, error) {
	vs = append(Values(nil), vs...)
	for i := range e.Fields {
		f := &e.Fields[i]
		if f.Generator == "" {
			continue
		}
		if v, ok := vs.Get(f.Name); ok && v != nil {
			continue
		}
		g, err := GeneratorFor(f.Generator)
		if err != nil {
			return nil, err
		}
		id, err := g.Generate()
		if err != nil {
			return nil, err
		}
		vs = vs.Set(f.Name, id)
	}
	return vs, nil
}

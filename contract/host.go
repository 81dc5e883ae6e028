package contract

import (
	"sync"

	"github.com/tendermint/ats/types"
)

// MarkerQuerier reports whether a denom is a restricted marker whose
// transfers must be authorized by an administrator.
type MarkerQuerier interface {
	IsRestricted(denom string) (bool, error)
}

// AttributeQuerier returns the attribute names held by an account.
type AttributeQuerier interface {
	Attributes(addr string) ([]string, error)
}

// StaticMarkers is a MarkerQuerier over a fixed set of restricted denoms.
type StaticMarkers struct {
	mtx        sync.RWMutex
	restricted map[string]bool
}

var _ MarkerQuerier = (*StaticMarkers)(nil)

// NewStaticMarkers returns a StaticMarkers treating denoms as restricted.
func NewStaticMarkers(denoms ...string) *StaticMarkers {
	m := &StaticMarkers{restricted: make(map[string]bool)}
	for _, d := range denoms {
		m.restricted[d] = true
	}
	return m
}

// SetRestricted marks or unmarks denom as restricted.
func (m *StaticMarkers) SetRestricted(denom string, restricted bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if restricted {
		m.restricted[denom] = true
	} else {
		delete(m.restricted, denom)
	}
}

func (m *StaticMarkers) IsRestricted(denom string) (bool, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.restricted[denom], nil
}

// StaticAttributes is an AttributeQuerier over a fixed account registry.
type StaticAttributes struct {
	mtx   sync.RWMutex
	attrs map[string][]string
}

var _ AttributeQuerier = (*StaticAttributes)(nil)

// NewStaticAttributes returns an empty registry.
func NewStaticAttributes() *StaticAttributes {
	return &StaticAttributes{attrs: make(map[string][]string)}
}

// Grant adds attribute names to addr.
func (a *StaticAttributes) Grant(addr string, names ...string) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.attrs[addr] = append(a.attrs[addr], names...)
}

func (a *StaticAttributes) Attributes(addr string) ([]string, error) {
	a.mtx.RLock()
	defer a.mtx.RUnlock()
	return append([]string(nil), a.attrs[addr]...), nil
}

// hasAttributes reports whether addr holds every required attribute.
func hasAttributes(q AttributeQuerier, addr string, required []string) (bool, error) {
	if len(required) == 0 {
		return true, nil
	}
	held, err := q.Attributes(addr)
	if err != nil {
		return false, err
	}
	return types.IsSubset(required, held), nil
}

package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"

	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/identity"
)

const rotatedSeedBytes = 32

type managerImpl struct {
	mu      sync.Mutex
	deriver identity.Deriver
	current *identity.Identity
}

// NewManager creates the session identity manager. There is no active
// identity until the first Generate or Rotate.
func NewManager(deriver identity.Deriver) identity.Manager {
	return &managerImpl{deriver: deriver}
}

func (m *managerImpl) Current() *identity.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	cpy := *m.current
	return &cpy
}

func (m *managerImpl) Generate(ctx bCtx.Ctx, seed string) (*identity.Identity, error) {
	if strings.TrimSpace(seed) == "" {
		return nil, domain.ErrInvalidSeed
	}
	id, err := m.deriver.DeriveIdentity(ctx, seed)
	if err != nil {
		ctx.WithField("err", err).Error("deriver.DeriveIdentity failed")
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = id
	cpy := *id
	return &cpy, nil
}

func (m *managerImpl) Rotate(ctx bCtx.Ctx) (*identity.Identity, error) {
	buf := make([]byte, rotatedSeedBytes)
	if _, err := rand.Read(buf); err != nil {
		ctx.WithField("err", err).Error("rand.Read failed")
		return nil, err
	}
	return m.Generate(ctx, hex.EncodeToString(buf))
}

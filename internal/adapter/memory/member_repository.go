package memory

import (
	"context"
	"sync"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
)

type MemberRepository struct {
	mu       sync.RWMutex
	members  map[uint64]domain.Member
	licences map[uint64]domain.Licence
}

var _ ports.MemberRepository = (*MemberRepository)(nil)

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{
		members:  make(map[uint64]domain.Member),
		licences: make(map[uint64]domain.Licence),
	}
}

// Put stores m and the licences it holds.
func (r *MemberRepository) Put(m domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[m.ID] = m
	for _, l := range m.Licences {
		r.licences[l.Licence.ID] = l.Licence
	}
}

func (r *MemberRepository) PutLicence(l domain.Licence) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.licences[l.ID] = l
}

func (r *MemberRepository) GetMember(_ context.Context, id uint64) (domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[id]
	if !ok {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	return m, nil
}

func (r *MemberRepository) GetLicence(_ context.Context, id uint64) (domain.Licence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.licences[id]
	if !ok {
		return domain.Licence{}, domain.ErrLicenceNotFound
	}
	return l, nil
}

package ports

import (
	"context"

	"sailclub/internal/core/domain"
)

type MemberRepository interface {
	GetMember(ctx context.Context, id uint64) (domain.Member, error)
	GetLicence(ctx context.Context, id uint64) (domain.Licence, error)
}

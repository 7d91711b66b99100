package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"sailclub/internal/core/domain"
	"sailclub/internal/core/ports"
)

const getMemberQuery = `
SELECT id, first_name, last_name, email, language
FROM members
WHERE id = ?;
`

const listMemberRolesQuery = `
SELECT role
FROM member_roles
WHERE member_id = ?
ORDER BY role;
`

const listMemberLicencesQuery = `
SELECT l.id, l.code, l.name, ml.status
FROM member_licences ml
JOIN licences l ON l.id = ml.licence_id
WHERE ml.member_id = ?
ORDER BY l.code;
`

const getLicenceQuery = `
SELECT id, code, name
FROM licences
WHERE id = ?;
`

type MemberRepository struct {
	db *sqlx.DB
}

type licenceRow struct {
	ID   uint64 `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
}

type memberLicenceRow struct {
	licenceRow
	Status string `db:"status"`
}

var _ ports.MemberRepository = (*MemberRepository)(nil)

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) GetMember(ctx context.Context, id uint64) (domain.Member, error) {
	var row memberRefRow
	if err := r.db.GetContext(ctx, &row, getMemberQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Member{}, domain.ErrMemberNotFound
		}
		return domain.Member{}, err
	}

	var roles []string
	if err := r.db.SelectContext(ctx, &roles, listMemberRolesQuery, id); err != nil {
		return domain.Member{}, err
	}

	var licences []memberLicenceRow
	if err := r.db.SelectContext(ctx, &licences, listMemberLicencesQuery, id); err != nil {
		return domain.Member{}, err
	}

	member := domain.Member{MemberRef: mapMemberRefRow(row)}
	for _, role := range roles {
		member.Roles = append(member.Roles, domain.Role(role))
	}
	for _, l := range licences {
		member.Licences = append(member.Licences, domain.MemberLicence{
			Licence: mapLicenceRow(l.licenceRow),
			Status:  domain.LicenceStatus(l.Status),
		})
	}
	return member, nil
}

func (r *MemberRepository) GetLicence(ctx context.Context, id uint64) (domain.Licence, error) {
	var row licenceRow
	if err := r.db.GetContext(ctx, &row, getLicenceQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Licence{}, domain.ErrLicenceNotFound
		}
		return domain.Licence{}, err
	}
	return mapLicenceRow(row), nil
}

func mapLicenceRow(row licenceRow) domain.Licence {
	return domain.Licence{ID: row.ID, Code: row.Code, Name: row.Name}
}

package domain

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

type LicenceStatus string

const (
	LicenceStatusActive  LicenceStatus = "active"
	LicenceStatusExpired LicenceStatus = "expired"
)

type Licence struct {
	ID   uint64
	Code string
	Name string
}

type MemberLicence struct {
	Licence Licence
	Status  LicenceStatus
}

// MemberRef is the slice of a member that tasks embed for contact, captain,
// helpers and audit actors.
type MemberRef struct {
	ID        uint64
	FirstName string
	LastName  string
	Email     string
	Language  string
}

func (m MemberRef) FullName() string {
	switch {
	case m.FirstName == "":
		return m.LastName
	case m.LastName == "":
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

type Member struct {
	MemberRef
	Roles    []Role
	Licences []MemberLicence
}

func (m Member) Ref() MemberRef {
	return m.MemberRef
}

func (m Member) HasRole(role Role) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (m Member) IsAdmin() bool {
	return m.HasRole(RoleAdmin)
}

func (m Member) IsEditor() bool {
	return m.HasRole(RoleEditor)
}

func (m Member) HoldsActiveLicence(licenceID uint64) bool {
	for _, l := range m.Licences {
		if l.Licence.ID == licenceID && l.Status == LicenceStatusActive {
			return true
		}
	}
	return false
}

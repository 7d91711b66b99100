package dto

type MemberItem struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

type LicenceItem struct {
	ID   uint64 `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type CategoryItem struct {
	ID               uint64  `json:"id"`
	Title            string  `json:"title"`
	ShortDescription string  `json:"short_description"`
	LongDescription  *string `json:"long_description,omitempty"`
}

type HelperItem struct {
	Member     MemberItem `json:"member"`
	SignedUpAt string     `json:"signed_up_at"`
}

type TaskItem struct {
	ID                     uint64       `json:"id"`
	Type                   string       `json:"type"`
	State                  string       `json:"state"`
	Category               CategoryItem `json:"category"`
	Title                  string       `json:"title"`
	ShortDescription       string       `json:"short_description"`
	LongDescription        *string      `json:"long_description,omitempty"`
	Contact                MemberItem   `json:"contact"`
	StartsAt               *string      `json:"starts_at,omitempty"`
	EndsAt                 *string      `json:"ends_at,omitempty"`
	Deadline               *string      `json:"deadline,omitempty"`
	HelperMinCount         int          `json:"helper_min_count"`
	HelperMaxCount         int          `json:"helper_max_count"`
	Urgent                 bool         `json:"urgent"`
	Published              bool         `json:"published"`
	Captain                *MemberItem  `json:"captain,omitempty"`
	CaptainSignedUpAt      *string      `json:"captain_signed_up_at,omitempty"`
	CaptainRequiredLicence *LicenceItem `json:"captain_required_licence,omitempty"`
	Helpers                []HelperItem `json:"helpers"`
	MarkedAsDoneAt         *string      `json:"marked_as_done_at,omitempty"`
	MarkedAsDoneBy         *MemberItem  `json:"marked_as_done_by,omitempty"`
	MarkedAsDoneComment    *string      `json:"marked_as_done_comment,omitempty"`
	ValidatedAt            *string      `json:"validated_at,omitempty"`
	ValidatedBy            *MemberItem  `json:"validated_by,omitempty"`
	ValidationComment      *string      `json:"validation_comment,omitempty"`
	CreatedAt              string       `json:"created_at"`
	UpdatedAt              string       `json:"updated_at"`
}

// TaskRequest is the body of both create and update: updates replace every field.
type TaskRequest struct {
	CategoryID               uint64  `json:"category_id" binding:"required,gt=0"`
	Title                    string  `json:"title" binding:"required,max=255"`
	ShortDescription         string  `json:"short_description" binding:"required,max=255"`
	LongDescription          *string `json:"long_description" binding:"omitempty,max=65535"`
	ContactID                uint64  `json:"contact_id" binding:"required,gt=0"`
	StartsAt                 *string `json:"starts_at" binding:"omitempty"`
	EndsAt                   *string `json:"ends_at" binding:"omitempty"`
	Deadline                 *string `json:"deadline" binding:"omitempty"`
	HelperMinCount           *int    `json:"helper_min_count" binding:"required,gte=0"`
	HelperMaxCount           *int    `json:"helper_max_count" binding:"required,gte=0"`
	Urgent                   bool    `json:"urgent"`
	Published                bool    `json:"published"`
	CaptainRequiredLicenceID *uint64 `json:"captain_required_licence_id" binding:"omitempty,gt=0"`
}

type MarkAsDoneRequest struct {
	Comment *string `json:"comment" binding:"omitempty,max=65535"`
}

type ValidateRequest struct {
	ValidateHelperIDs []uint64 `json:"validate_helper_ids"`
	RemoveHelperIDs   []uint64 `json:"remove_helper_ids"`
	Comment           *string  `json:"comment" binding:"omitempty,max=65535"`
}

package validation

import (
	"errors"
	"strings"
	"time"

	"sailclub/internal/adapter/http/dto"
	"sailclub/internal/core/domain"
)

var ErrInvalidTaskPayload = errors.New("invalid task payload")

// BuildTaskFields turns a create or update body into task fields. Timing values
// are RFC 3339 timestamps; the timing mode itself is checked by the domain.
func BuildTaskFields(req dto.TaskRequest) (domain.TaskFields, error) {
	title := strings.TrimSpace(req.Title)
	shortDescription := strings.TrimSpace(req.ShortDescription)
	if title == "" || shortDescription == "" {
		return domain.TaskFields{}, ErrInvalidTaskPayload
	}
	if req.HelperMinCount == nil || req.HelperMaxCount == nil {
		return domain.TaskFields{}, ErrInvalidTaskPayload
	}

	startsAt, err := parseTimestamp(req.StartsAt)
	if err != nil {
		return domain.TaskFields{}, err
	}
	endsAt, err := parseTimestamp(req.EndsAt)
	if err != nil {
		return domain.TaskFields{}, err
	}
	deadline, err := parseTimestamp(req.Deadline)
	if err != nil {
		return domain.TaskFields{}, err
	}

	return domain.TaskFields{
		CategoryID:               req.CategoryID,
		Title:                    title,
		ShortDescription:         shortDescription,
		LongDescription:          OptionalText(req.LongDescription),
		ContactID:                req.ContactID,
		Timing:                   domain.Timing{StartsAt: startsAt, EndsAt: endsAt, Deadline: deadline},
		HelperMinCount:           *req.HelperMinCount,
		HelperMaxCount:           *req.HelperMaxCount,
		Urgent:                   req.Urgent,
		Published:                req.Published,
		CaptainRequiredLicenceID: req.CaptainRequiredLicenceID,
	}, nil
}

func BuildValidationRequest(req dto.ValidateRequest) domain.ValidationRequest {
	return domain.ValidationRequest{
		ValidateHelperIDs: req.ValidateHelperIDs,
		RemoveHelperIDs:   req.RemoveHelperIDs,
		Comment:           OptionalText(req.Comment),
	}
}

// OptionalText trims free text; blank means absent.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	value := strings.TrimSpace(*s)
	if value == "" {
		return nil
	}
	return &value
}

func parseTimestamp(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*value))
	if err != nil {
		return nil, ErrInvalidTaskPayload
	}
	return &parsed, nil
}

package mapper

import (
	"time"

	"sailclub/internal/adapter/http/dto"
	"sailclub/internal/core/domain"
)

func ToTaskItems(tasks []domain.HelperTask) []dto.TaskItem {
	items := make([]dto.TaskItem, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, ToTaskItem(task))
	}
	return items
}

func ToTaskItem(task domain.HelperTask) dto.TaskItem {
	item := dto.TaskItem{
		ID:                  task.ID,
		Type:                string(task.Type()),
		State:               string(task.State()),
		Category:            ToCategoryItem(task.Category),
		Title:               task.Title,
		ShortDescription:    task.ShortDescription,
		LongDescription:     copyString(task.LongDescription),
		Contact:             toMemberItem(task.Contact),
		StartsAt:            formatTime(task.Timing.StartsAt),
		EndsAt:              formatTime(task.Timing.EndsAt),
		Deadline:            formatTime(task.Timing.Deadline),
		HelperMinCount:      task.HelperMinCount,
		HelperMaxCount:      task.HelperMaxCount,
		Urgent:              task.Urgent,
		Published:           task.Published,
		CaptainSignedUpAt:   formatTime(task.CaptainSignedUpAt),
		Helpers:             make([]dto.HelperItem, 0, len(task.Helpers)),
		MarkedAsDoneAt:      formatTime(task.MarkedAsDoneAt),
		MarkedAsDoneComment: copyString(task.MarkedAsDoneComment),
		ValidatedAt:         formatTime(task.ValidatedAt),
		ValidationComment:   copyString(task.ValidationComment),
		CreatedAt:           task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           task.UpdatedAt.Format(time.RFC3339),
	}

	// Only the contact is meant to be reached by mail.
	item.Contact.Email = task.Contact.Email

	item.Captain = toMemberItemPtr(task.Captain)
	item.MarkedAsDoneBy = toMemberItemPtr(task.MarkedAsDoneBy)
	item.ValidatedBy = toMemberItemPtr(task.ValidatedBy)

	if task.CaptainRequiredLicence != nil {
		item.CaptainRequiredLicence = &dto.LicenceItem{
			ID:   task.CaptainRequiredLicence.ID,
			Code: task.CaptainRequiredLicence.Code,
			Name: task.CaptainRequiredLicence.Name,
		}
	}

	for _, helper := range task.Helpers {
		item.Helpers = append(item.Helpers, dto.HelperItem{
			Member:     toMemberItem(helper.Member),
			SignedUpAt: helper.SignedUpAt.Format(time.RFC3339),
		})
	}

	return item
}

func ToCategoryItems(categories []domain.Category) []dto.CategoryItem {
	items := make([]dto.CategoryItem, 0, len(categories))
	for _, category := range categories {
		items = append(items, ToCategoryItem(category))
	}
	return items
}

func ToCategoryItem(category domain.Category) dto.CategoryItem {
	return dto.CategoryItem{
		ID:               category.ID,
		Title:            category.Title,
		ShortDescription: category.ShortDescription,
		LongDescription:  copyString(category.LongDescription),
	}
}

func toMemberItem(member domain.MemberRef) dto.MemberItem {
	return dto.MemberItem{
		ID:        member.ID,
		FirstName: member.FirstName,
		LastName:  member.LastName,
	}
}

func toMemberItemPtr(member *domain.MemberRef) *dto.MemberItem {
	if member == nil {
		return nil
	}
	item := toMemberItem(*member)
	return &item
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := t.Format(time.RFC3339)
	return &value
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	value := *s
	return &value
}

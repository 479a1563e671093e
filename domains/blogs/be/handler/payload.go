package handler

import (
	"encoding/json"

	"github.com/inkpress/inkpress/domains/blogs/be/service"
	"github.com/inkpress/inkpress/platform/go/persistence"
)

// blogPayload is the request body for both create and update. Every field is
// optional at the decode level so update can distinguish "absent" from
// "present but zero"; create applies its own required-field validation in the
// service layer.
type blogPayload struct {
	Title     *string   `json:"title"`
	Slug      *string   `json:"slug"`
	Excerpt   *string   `json:"excerpt"`
	Content   *string   `json:"content"`
	Tags      tagsField `json:"tags"`
	Published *bool     `json:"published"`
}

// tagsField accepts either a JSON array of strings or a single
// comma-delimited string. Anything else (including null) counts as absent.
type tagsField struct {
	input   persistence.TagInput
	present bool
}

func (f *tagsField) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err == nil {
		f.input = persistence.TagList(values)
		f.present = true
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		f.input = persistence.TagText(text)
		f.present = true
		return nil
	}

	f.input = persistence.NoTags()
	f.present = false
	return nil
}

func (p blogPayload) toCreateInput() service.CreateInput {
	input := service.CreateInput{
		Slug: p.Slug,
		Tags: persistence.NoTags(),
	}
	if p.Title != nil {
		input.Title = *p.Title
	}
	if p.Excerpt != nil {
		input.Excerpt = *p.Excerpt
	}
	if p.Content != nil {
		input.Content = *p.Content
	}
	if p.Tags.present {
		input.Tags = p.Tags.input
	}
	if p.Published != nil {
		input.Published = *p.Published
	}
	return input
}

func (p blogPayload) toUpdateInput() service.UpdateInput {
	input := service.UpdateInput{
		Title:     p.Title,
		Slug:      p.Slug,
		Excerpt:   p.Excerpt,
		Content:   p.Content,
		Published: p.Published,
	}
	if p.Tags.present {
		tags := p.Tags.input
		input.Tags = &tags
	}
	return input
}

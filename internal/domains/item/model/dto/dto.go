package dto

import (
	"time"

	"cnpgdemo/internal/domains/item/model"
	gDto "cnpgdemo/shared/dto"
	"cnpgdemo/shared/failure"
	gModel "cnpgdemo/shared/model"
	"cnpgdemo/shared/timezone"
	"cnpgdemo/shared/validator"
)

type CreateItemRequest struct {
	Title       string  `json:"title"       validate:"required,notblank,max=255" example:"A"`
	Description *string `json:"description" example:"d"`
}

func (r CreateItemRequest) ToModel(now time.Time) model.Item {
	return model.Item{
		Title:       r.Title,
		Description: r.Description,
		Timestamps: gModel.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// UpdateItemRequest is a partial patch. Absent keys leave the stored value
// alone; "description": null clears it.
type UpdateItemRequest struct {
	Title       gDto.Optional[string] `json:"title"       swaggertype:"string" example:"A"`
	Description gDto.Optional[string] `json:"description" swaggertype:"string" example:"d"`
}

type titlePatch struct {
	Title string `json:"title" validate:"required,notblank,max=255"`
}

func (r UpdateItemRequest) Validate() error {
	if r.Title.Set {
		if r.Title.Null {
			return failure.UnprocessableFromString("title must not be null") //nolint:wrapcheck
		}

		return validator.ValidateStruct(&titlePatch{Title: r.Title.Value}) //nolint:wrapcheck
	}

	return nil
}

// Apply overwrites only the fields present in the request.
func (r UpdateItemRequest) Apply(item model.Item) model.Item {
	if r.Title.Set && !r.Title.Null {
		item.Title = r.Title.Value
	}

	if r.Description.Set {
		item.Description = r.Description.Ptr()
	}

	return item
}

type ItemResponse struct {
	ID          int64     `json:"id"          example:"1"`
	Title       string    `json:"title"       example:"A"`
	Description *string   `json:"description" example:"d"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *ItemResponse) FromModel(m model.Item) {
	r.ID = m.ID
	r.Title = m.Title
	r.Description = m.Description
	r.CreatedAt = timezone.ToAppTime(m.CreatedAt)
	r.UpdatedAt = timezone.ToAppTime(m.UpdatedAt)
}

type ItemsResponse []ItemResponse

func (r *ItemsResponse) FromModels(models []model.Item) {
	res := make(ItemsResponse, 0, len(models))

	for _, m := range models {
		var item ItemResponse

		item.FromModel(m)
		res = append(res, item)
	}

	*r = res
}

package model

import (
	gModel "cnpgdemo/shared/model"
)

const (
	EntityName = "item"
	TableName  = "items"
)

type Item struct {
	ID          int64   `db:"id"`
	Title       string  `db:"title"`
	Description *string `db:"description"`
	gModel.Timestamps
}

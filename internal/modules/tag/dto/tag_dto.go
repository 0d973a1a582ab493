package dto

type TagFilter struct {
	Search string `form:"search"`
}

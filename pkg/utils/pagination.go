package utils

import (
	"net/url"
	"strconv"

	apperrors "workers-service/pkg/errors"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// ParsePaginationParams читает page и page_size. Неверная страница означает 404, как и страница за концом списка.
func ParsePaginationParams(values url.Values) (limit int, offset int, page int, err error) {
	limit = DefaultLimit
	page = 1

	if limitStr := values.Get("page_size"); limitStr != "" {
		if l, convErr := strconv.Atoi(limitStr); convErr == nil && l > 0 {
			if l > MaxLimit {
				limit = MaxLimit
			} else {
				limit = l
			}
		}
	}

	if pageStr := values.Get("page"); pageStr != "" {
		p, convErr := strconv.Atoi(pageStr)
		if convErr != nil || p < 1 {
			return 0, 0, 0, apperrors.ErrInvalidPage
		}
		page = p
	}

	offset = (page - 1) * limit
	return limit, offset, page, nil
}

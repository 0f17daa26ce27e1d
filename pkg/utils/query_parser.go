package utils

import (
	"net/url"
	"strings"

	"workers-service/internal/dto"
	apperrors "workers-service/pkg/errors"
)

// ParseWorkerFilter собирает фильтр списка сотрудников из query-параметров.
// GET /api/workers/?search=иван&is_active=true&position=Разработчик&page=2&page_size=50
func ParseWorkerFilter(query url.Values) (dto.WorkerListFilter, error) {
	filter := dto.WorkerListFilter{}

	if raw, ok := query["is_active"]; ok && len(raw) > 0 && raw[0] != "" {
		v, valid := ParseBoolParam(raw[0])
		if !valid {
			return filter, apperrors.NewValidationError("is_active", "Выберите правильный вариант.")
		}
		filter.IsActive = &v
	}

	if position := query.Get("position"); position != "" {
		filter.Position = &position
	}

	filter.Search = strings.TrimSpace(query.Get("search"))

	limit, offset, page, err := ParsePaginationParams(query)
	if err != nil {
		return filter, err
	}
	filter.Limit = limit
	filter.Offset = offset
	filter.Page = page

	return filter, nil
}

// ParseBoolParam понимает true/false, 1/0, yes/no и on/off.
func ParseBoolParam(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}

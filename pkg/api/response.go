package api

import (
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Page - страница списка в формате {"count", "next", "previous", "results"}.
type Page[T any] struct {
	Count    uint64  `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// SuccessOne - для возврата одного объекта
func SuccessOne[T any](c echo.Context, code int, data T) error {
	return c.JSON(code, data)
}

func SuccessPage[T any](c echo.Context, list []T, total uint64, page, limit int) error {
	if list == nil {
		list = make([]T, 0)
	}

	body := Page[T]{
		Count:   total,
		Results: list,
	}

	if limit > 0 && uint64(page*limit) < total {
		next := pageURL(c, page+1)
		body.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1)
		body.Previous = &prev
	}

	return c.JSON(200, body)
}

// TotalPages - число страниц; пустой список занимает одну страницу.
func TotalPages(total uint64, limit int) int {
	if limit <= 0 || total == 0 {
		return 1
	}
	return int((total + uint64(limit) - 1) / uint64(limit))
}

// pageURL повторяет текущий запрос с другим номером страницы. Первая страница без параметра page.
func pageURL(c echo.Context, page int) string {
	req := c.Request()
	u := url.URL{
		Scheme: c.Scheme(),
		Host:   req.Host,
		Path:   req.URL.Path,
	}

	query := req.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = query.Encode()

	return u.String()
}

package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

type (
	// ListResponse is the list envelope: {"data": [...], "total": n}.
	ListResponse struct {
		Data  interface{} `json:"data"`
		Total int         `json:"total"`
	}

	// DetailResponse is the single-record envelope: {"data": {...}}.
	DetailResponse struct {
		Data interface{} `json:"data"`
	}
)

func newListResponse(data interface{}, total int) ListResponse {
	return ListResponse{Data: data, Total: total}
}

// intParam parses an integer path parameter; unparsable values read as
// addressing a record that does not exist.
func intParam(ctx echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, errHttpNotFound
	}
	return v, nil
}

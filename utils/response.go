package utils

import (
	"github.com/kataras/iris/v12"
)

// PageMeta describes one page of an admin listing (reservations, claims,
// users). Offsets are page-based, capped by the handlers.
type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// JSONPage writes the paginated listing envelope used across the admin
// surface: rows under "data", page info under "meta".
func JSONPage(ctx iris.Context, data interface{}, page, perPage int, total int64) {
	ctx.JSON(iris.Map{
		"data":  data,
		"meta":  PageMeta{Page: page, PerPage: perPage, Total: total},
		"links": iris.Map{},
	})
}

// JSONError writes a machine-readable error code with a human message, the
// counterpart of the envelope above for admin handlers.
func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}

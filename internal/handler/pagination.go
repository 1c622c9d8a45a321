package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageNum  = 1
	defaultPageSize = 10
)

var errBadPagination = errors.New("Invalid pagination parameters")

// parsePagination reads the pn/ps query parameters. Absent parameters fall
// back to defaults; present but non-integer or non-positive values are an
// error rather than being clamped.
func parsePagination(c *gin.Context) (pageNum, pageSize int, err error) {
	pageNum, err = positiveIntQuery(c, "pn", defaultPageNum)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err = positiveIntQuery(c, "ps", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	return pageNum, pageSize, nil
}

func positiveIntQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errBadPagination
	}
	return v, nil
}

// paginate slices an already-fetched list in memory. Review pagination
// deliberately happens after retrieval, not storage-side.
func paginate[T any](items []T, pageNum, pageSize int) []T {
	start := pageSize * (pageNum - 1)
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

package handler

import (
	"strconv"

	"painelloja/internal/app/admin/config"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// parsePagination reads 1-based page and page_size query parameters,
// falling back to the configured defaults and capping the page size.
func parsePagination(c *gin.Context, cfg config.PaginationConfig) (int, int) {
	page := 1
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}

	pageSize := cfg.DefaultPageSize
	if v := c.Query("page_size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}
	if pageSize > cfg.MaxPageSize {
		pageSize = cfg.MaxPageSize
	}

	return page, pageSize
}

// formatValidationError turns the first failing field into a short
// human-readable message.
func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}

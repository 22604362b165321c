package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/facilities/internal/domain/dto"
)

func (c *Controller) Ingest(ctx echo.Context) error {
	var request dto.IngestRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	results, err := c.service.Ingest.IngestBatch(ctx.Request().Context(), request.Records)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, results)
}

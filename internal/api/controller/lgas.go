package controller

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/facilities/internal/domain/dto"
)

func (c *Controller) ListFacilities(ctx echo.Context) error {
	facilities, err := c.service.Facilities.ListFacilities(ctx.Request().Context(), ctx.Param("lga"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, facilities)
}

func (c *Controller) GetLatestDataByLGA(ctx echo.Context) error {
	data, err := c.service.Facilities.LatestDataByLGA(ctx.Request().Context(), ctx.Param("lga"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, data)
}

func (c *Controller) GetSum(ctx echo.Context) error {
	return c.aggregate(ctx, c.service.Aggregation.Sum)
}

func (c *Controller) GetAverage(ctx echo.Context) error {
	return c.aggregate(ctx, c.service.Aggregation.Average)
}

func (c *Controller) aggregate(ctx echo.Context, fn func(ctx context.Context, slug, lga string) (*float64, error)) error {
	slug, lga := ctx.Param("variable"), ctx.Param("lga")

	value, err := fn(ctx.Request().Context(), slug, lga)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, dto.AggregateResponse{
		Variable: slug,
		LGA:      lga,
		Value:    value,
	})
}

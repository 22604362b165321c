package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/facilities/internal/domain/dto"
)

func (c *Controller) RegisterKeyRename(ctx echo.Context) error {
	var request dto.RegisterKeyRenameRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	err := c.service.Normalizer.RegisterKeyRename(ctx.Request().Context(), request.DataSource, request.OldKey, request.NewKey)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, request)
}

func (c *Controller) ListKeyRenames(ctx echo.Context) error {
	rules, err := c.service.Normalizer.RulesFor(ctx.Request().Context(), ctx.Param("data_source"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rules)
}

func (c *Controller) Normalize(ctx echo.Context) error {
	var request dto.NormalizeRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	record, warnings, err := c.service.Normalizer.Normalize(ctx.Request().Context(), request.Record, request.DataSource)
	if err != nil {
		return err
	}

	resp := dto.NormalizeResponse{Record: record}
	for _, w := range warnings {
		resp.UnusedRules = append(resp.UnusedRules, w.OldKey)
	}

	return ctx.JSON(http.StatusOK, resp)
}

package controller

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/domain/dto"
	"github.com/ougirez/facilities/internal/pkg/constants"
)

func (c *Controller) ListVariables(ctx echo.Context) error {
	variables := c.service.Registry.Schema().Variables()

	resp := make([]map[string]any, 0, len(variables))
	for _, v := range variables {
		resp = append(resp, v.ToDict())
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) GetVariable(ctx echo.Context) error {
	slug := ctx.Param("slug")

	variable, ok := c.service.Registry.Schema().Variable(slug)
	if !ok {
		return fmt.Errorf("variable %s: %w", slug, constants.ErrVariableNotFound)
	}

	return ctx.JSON(http.StatusOK, variable.ToDict())
}

// RegisterVariable declares a raw variable, or a calculated one when the
// request carries a formula.
func (c *Controller) RegisterVariable(ctx echo.Context) error {
	var request dto.RegisterVariableRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	var (
		variable *domain.Variable
		err      error
	)
	if request.Formula != "" {
		variable, err = c.service.Registry.RegisterCalculatedVariable(ctx.Request().Context(), request.ToDomain())
	} else {
		variable, err = c.service.Registry.RegisterVariable(ctx.Request().Context(), request.ToDomain())
	}
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, variable.ToDict())
}

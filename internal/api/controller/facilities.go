package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/domain/dto"
	"github.com/ougirez/facilities/internal/pkg/constants"
)

func (c *Controller) RegisterFacility(ctx echo.Context) error {
	var request dto.RegisterFacilityRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	facility, err := c.service.Facilities.RegisterFacility(ctx.Request().Context(), request.FacilityID, request.LGA)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, facility)
}

func (c *Controller) GetFacility(ctx echo.Context) error {
	facility, err := c.service.Facilities.GetFacility(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, facility)
}

func (c *Controller) WriteRecord(ctx echo.Context) error {
	var request dto.WriteRecordRequest
	if err := ctx.Bind(&request); err != nil {
		return err
	}

	var date time.Time
	if request.Date != "" {
		var err error
		if date, err = domain.ParseDate(request.Date); err != nil {
			return fmt.Errorf("%w: %v", constants.ErrBadRequest, err)
		}
	}

	record, err := c.service.Facilities.Write(ctx.Request().Context(), ctx.Param("id"), request.Variable, request.Value, date)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, record)
}

func (c *Controller) GetLatestData(ctx echo.Context) error {
	data, err := c.service.Facilities.LatestData(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, data)
}

func (c *Controller) GetLatestValue(ctx echo.Context) error {
	slug := ctx.Param("variable")

	value, found, err := c.service.Facilities.LatestValue(ctx.Request().Context(), ctx.Param("id"), slug)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, dto.LatestValueResponse{
		Variable: slug,
		Value:    value,
		Found:    found,
	})
}

func (c *Controller) GetAllData(ctx echo.Context) error {
	data, err := c.service.Facilities.AllData(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, data)
}

func (c *Controller) GetDates(ctx echo.Context) error {
	dates, err := c.service.Facilities.DistinctDates(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	resp := make([]string, 0, len(dates))
	for _, d := range dates {
		resp = append(resp, domain.DateISO(d))
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (c *Controller) GetSector(ctx echo.Context) error {
	value, found, err := c.service.Facilities.Sector(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, dto.LatestValueResponse{
		Variable: constants.SectorVariableSlug,
		Value:    value,
		Found:    found,
	})
}

// GetCalculated evaluates every calculated variable against the facility's
// latest data without storing the results.
func (c *Controller) GetCalculated(ctx echo.Context) error {
	latest, err := c.service.Facilities.LatestData(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, c.service.Calculator.Calculate(ctx.Request().Context(), latest))
}

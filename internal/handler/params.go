package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/districtops/transport-api/internal/models"
	appErrors "github.com/districtops/transport-api/pkg/errors"
)

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func queryDate(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, name+" query parameter is required")
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+name+" date, expected YYYY-MM-DD")
	}
	return date, nil
}

func windowParams(c *gin.Context) (time.Time, models.TimeOfDay, models.TimeOfDay, error) {
	date, err := queryDate(c, "date")
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	start, err := queryTime(c, "start")
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	end, err := queryTime(c, "end")
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	return date, start, end, nil
}

func queryTime(c *gin.Context, name string) (models.TimeOfDay, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" query parameter is required")
	}
	parsed, err := models.ParseTimeOfDay(raw)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+name+" time, expected HH:MM")
	}
	return parsed, nil
}

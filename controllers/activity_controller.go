package controllers

import (
	"github.com/gofiber/fiber/v2"

	"ihya/services"
	"ihya/utils"
)

type ActivityController struct {
	Activity *services.ActivityService
}

func NewActivityController(activity *services.ActivityService) *ActivityController {
	return &ActivityController{Activity: activity}
}

func (ac *ActivityController) Logs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)

	result, err := ac.Activity.GetLogs(page, limit)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Paginate(c, result.Logs, result.Total, result.Page, limit, result.TotalPages)
}

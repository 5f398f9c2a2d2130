package admin

import (
	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StaffResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Position       string `json:"position"`
	DepartmentID   *uint  `json:"department_id"`
	DepartmentName string `json:"department_name"`
}

func toStaffResponse(u models.User) StaffResponse {
	resp := StaffResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		Position:     u.Position,
		DepartmentID: u.DepartmentID,
	}
	if u.Department != nil {
		resp.DepartmentName = u.Department.Name
	}
	return resp
}

// GET /api/staff
func ListStaffHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := db.Preload("Department").Order("name ASC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list staff")
		}

		resp := make([]StaffResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, toStaffResponse(u))
		}
		return c.JSON(resp)
	}
}

// PUT /api/staff/:id/role
func UpdateStaffRoleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := db.Preload("Department").First(&user, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Staff member not found")
		}

		var body struct {
			Role         string `json:"role"`
			DepartmentID *uint  `json:"department_id"`
			Position     string `json:"position"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Role != "" {
			switch models.UserRole(body.Role) {
			case models.RoleAdmin, models.RoleSupervisor, models.RoleOperator:
				user.Role = models.UserRole(body.Role)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "role must be admin, supervisor or operator")
			}
		}
		if body.DepartmentID != nil {
			var dept models.Department
			if err := db.First(&dept, "id = ?", *body.DepartmentID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Department not found")
			}
			user.DepartmentID = body.DepartmentID
			user.Department = &dept
		}
		if body.Position != "" {
			user.Position = body.Position
		}

		if err := db.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update staff member")
		}

		return c.JSON(toStaffResponse(user))
	}
}

// DELETE /api/staff/:id
func DeleteStaffHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := db.First(&user, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Staff member not found")
		}

		if err := db.Delete(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete staff member")
		}

		return c.JSON(fiber.Map{"message": "Staff deleted successfully"})
	}
}

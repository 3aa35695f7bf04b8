package admin

import (
	"errors"
	"strings"

	"material-backend/internal/database"
	"material-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserResponse struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	DepartmentID   *uint  `json:"department_id"`
	DepartmentName string `json:"department_name"`
	CreatedAt      string `json:"created_at"`
}

type CreateUserRequest struct {
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	DepartmentID *uint  `json:"department_id"`
}

type UpdateUserRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	Role         *string `json:"role"`
	DepartmentID *uint   `json:"department_id"`
}

func toUserResponse(u *models.User) UserResponse {
	res := UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		DepartmentID: u.DepartmentID,
		CreatedAt:    u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if u.Department != nil {
		res.DepartmentName = u.Department.Name
	}
	return res
}

func roleValid(role string) bool {
	switch models.UserRole(role) {
	case models.RoleSuperAdmin, models.RoleMaterialAdmin, models.RoleMember:
		return true
	}
	return false
}

// POST /api/users (sadece super_admin)
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Username = strings.TrimSpace(body.Username)
		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.TrimSpace(body.Email)

		if body.Username == "" || body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Sicil no, ad, e-posta ve şifre zorunlu")
		}
		if len(body.Password) < 6 {
			return fiber.NewError(fiber.StatusBadRequest, "Şifre en az 6 karakter olmalı")
		}
		if !roleValid(body.Role) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz rol: "+body.Role)
		}
		if models.UserRole(body.Role) != models.RoleSuperAdmin && body.DepartmentID == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Departman seçilmeli")
		}

		if body.DepartmentID != nil {
			var dept models.Department
			if err := database.DB.First(&dept, "id = ?", *body.DepartmentID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Departman bulunamadı")
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre işlenemedi")
		}

		user := models.User{
			Username:     body.Username,
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.UserRole(body.Role),
			DepartmentID: body.DepartmentID,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Bu sicil no veya e-posta zaten kayıtlı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(&user))
	}
}

// GET /api/users?department_id=1&role=member
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Department")
		if deptStr := c.Query("department_id"); deptStr != "" {
			dbq = dbq.Where("department_id = ?", deptStr)
		}
		if role := c.Query("role"); role != "" {
			dbq = dbq.Where("role = ?", role)
		}

		var users []models.User
		if err := dbq.Order("name").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}

		res := make([]UserResponse, 0, len(users))
		for i := range users {
			res = append(res, toUserResponse(&users[i]))
		}

		return c.JSON(res)
	}
}

// PUT /api/users/:id (sadece super_admin)
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.Preload("Department").First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ad boş olamaz")
			}
			user.Name = name
		}
		if body.Email != nil {
			email := strings.TrimSpace(*body.Email)
			if email == "" {
				return fiber.NewError(fiber.StatusBadRequest, "E-posta boş olamaz")
			}
			user.Email = email
		}
		if body.Password != nil {
			if len(*body.Password) < 6 {
				return fiber.NewError(fiber.StatusBadRequest, "Şifre en az 6 karakter olmalı")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Şifre işlenemedi")
			}
			user.PasswordHash = string(hash)
		}
		if body.Role != nil {
			if !roleValid(*body.Role) {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz rol: "+*body.Role)
			}
			user.Role = models.UserRole(*body.Role)
		}
		if body.DepartmentID != nil {
			var dept models.Department
			if err := database.DB.First(&dept, "id = ?", *body.DepartmentID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Departman bulunamadı")
			}
			user.DepartmentID = body.DepartmentID
			user.Department = &dept
		}

		if err := database.DB.Save(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Bu e-posta zaten kayıtlı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı güncellenemedi")
		}

		return c.JSON(toUserResponse(&user))
	}
}

// DELETE /api/users/:id (sadece super_admin)
func DeleteUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}
		if user.Role == models.RoleSuperAdmin {
			return fiber.NewError(fiber.StatusForbidden, "Süper yönetici silinemez")
		}

		var adminCount int64
		database.DB.Model(&models.MaterialAdmin{}).Where("user_id = ?", user.ID).Count(&adminCount)
		if adminCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu kullanıcı malzeme yöneticisi olarak atanmış, önce atamayı kaldırın")
		}

		if err := database.DB.Delete(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Kullanıcı silindi"})
	}
}

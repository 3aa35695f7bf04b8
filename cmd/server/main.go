package main

import (
	"log"
	"strings"

	"material-backend/internal/admin"
	"material-backend/internal/audit"
	"material-backend/internal/auth"
	"material-backend/internal/config"
	"material-backend/internal/dashboard"
	"material-backend/internal/database"
	"material-backend/internal/device"
	"material-backend/internal/materials"
	"material-backend/internal/models"
	"material-backend/internal/request"
	"material-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Super admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleSuperAdmin))

	// Yerleşke yönetimi
	adminRoutes.Post("/bases", admin.CreateBaseHandler())
	adminRoutes.Put("/bases/:id", admin.UpdateBaseHandler())
	adminRoutes.Delete("/bases/:id", admin.DeleteBaseHandler())

	// Departman yönetimi
	adminRoutes.Post("/departments", admin.CreateDepartmentHandler())
	adminRoutes.Put("/departments/:id", admin.UpdateDepartmentHandler())
	adminRoutes.Delete("/departments/:id", admin.DeleteDepartmentHandler())

	// Kullanıcı yönetimi
	adminRoutes.Post("/users", admin.CreateUserHandler())
	adminRoutes.Get("/users", admin.ListUsersHandler())
	adminRoutes.Put("/users/:id", admin.UpdateUserHandler())
	adminRoutes.Delete("/users/:id", admin.DeleteUserHandler())

	// Malzeme yöneticisi atamaları
	adminRoutes.Post("/material-admins", admin.CreateMaterialAdminHandler())
	adminRoutes.Delete("/material-admins/:id", admin.DeleteMaterialAdminHandler())

	// Malzeme türleri ve cihaz türleri (tanım tabloları)
	adminRoutes.Post("/material-types", materials.CreateMaterialTypeHandler())
	adminRoutes.Put("/material-types/:id", materials.UpdateMaterialTypeHandler())
	adminRoutes.Delete("/material-types/:id", materials.DeleteMaterialTypeHandler())
	adminRoutes.Post("/device-types", device.CreateDeviceTypeHandler())
	adminRoutes.Put("/device-types/:id", device.UpdateDeviceTypeHandler())
	adminRoutes.Delete("/device-types/:id", device.DeleteDeviceTypeHandler())

	// Malzeme tanımları
	adminRoutes.Post("/materials", materials.CreateMaterialHandler())
	adminRoutes.Put("/materials/:id", materials.UpdateMaterialHandler())
	adminRoutes.Delete("/materials/:id", materials.DeleteMaterialHandler())
	adminRoutes.Post("/materials/import", materials.ImportMaterialsHandler())

	// Stok içe aktarma ve çalışma kaydı silme
	adminRoutes.Post("/stocks/import", stock.ImportStocksHandler())
	adminRoutes.Delete("/equipment-logs/:id", device.DeleteEquipmentLogHandler())

	// Ortak (auth gerektiren) route'lar

	// Tanım listeleri
	protected.Get("/bases", admin.ListBasesHandler())
	protected.Get("/departments", admin.ListDepartmentsHandler())
	protected.Get("/material-admins", admin.ListMaterialAdminsHandler())
	protected.Get("/material-types", materials.ListMaterialTypesHandler())
	protected.Get("/materials", materials.ListMaterialsHandler())
	protected.Get("/device-types", device.ListDeviceTypesHandler())

	// Stok yönetimi
	protected.Post("/stocks", stock.CreateStockHandler())
	protected.Get("/stocks", stock.ListStocksHandler())
	protected.Put("/stocks/:id", stock.UpdateStockHandler())
	protected.Delete("/stocks/:id", stock.DeleteStockHandler())
	protected.Get("/stocks/export", stock.ExportStocksHandler())

	// Malzeme talepleri
	protected.Post("/requests", request.CreateRequestHandler())
	protected.Get("/requests", request.ListRequestsHandler())
	protected.Get("/requests/export", request.ExportRequestsHandler())
	protected.Get("/requests/:id", request.GetRequestHandler())
	protected.Put("/requests/:id", request.UpdateRequestHandler())
	protected.Post("/requests/:id/decision", request.DecideRequestHandler())
	protected.Delete("/requests/:id", request.DeleteRequestHandler())

	// Cihazlar ve çalışma kayıtları
	protected.Post("/devices", device.CreateDeviceHandler())
	protected.Get("/devices", device.ListDevicesHandler())
	protected.Put("/devices/:id", device.UpdateDeviceHandler())
	protected.Delete("/devices/:id", device.DeleteDeviceHandler())
	protected.Post("/equipment-logs", device.CreateEquipmentLogHandler())
	protected.Get("/equipment-logs", device.ListEquipmentLogsHandler())

	// Dashboard
	protected.Get("/dashboard/consumption-chart", dashboard.ConsumptionChartHandler())
	protected.Get("/dashboard/stock-overview", dashboard.StockOverviewHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}

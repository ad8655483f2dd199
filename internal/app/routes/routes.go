package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentadmin/internal/app/auth"
	"github.com/yigit/studentadmin/internal/app/controllers"
	"github.com/yigit/studentadmin/internal/app/models/dto"
	"github.com/yigit/studentadmin/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	studentController *controllers.StudentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewStructuredResponse(gin.H{"time": time.Now().UTC()}, "ok"))
	})

	students := v1.Group("/students")
	students.Use(authMiddleware.JWTAuth())

	{
		students.GET("/profile", authMiddleware.RoleRequired(auth.AnyRole...), studentController.GetProfile)
		students.POST("/update-picture", authMiddleware.RoleRequired(auth.AnyRole...), studentController.UpdatePicture)
	}

	staff := students.Group("")
	staff.Use(authMiddleware.RoleRequired(auth.StaffRoles...))
	{
		staff.GET("/departments", studentController.StudentsByDepartment)
		staff.POST("/bulk-upload", studentController.BulkUpload)
		staff.GET("/bulk-download", studentController.BulkDownload)
		staff.GET("", studentController.ListStudents)
		staff.POST("", studentController.CreateStudent)
		staff.GET("/:id", studentController.GetStudent)
	}

	admin := students.Group("")
	admin.Use(authMiddleware.RoleRequired(auth.AdminRoles...))
	{
		admin.POST("/:id/reset-password", studentController.ResetPassword)
		admin.PUT("/:id", studentController.UpdateStudent)
	}

	superAdmin := students.Group("")
	superAdmin.Use(authMiddleware.RoleRequired(auth.SuperAdminRoles...))
	{
		superAdmin.DELETE("/:id", studentController.DeleteStudent)
		superAdmin.POST("/:id/block", studentController.ToggleBlock)
		superAdmin.POST("/reset-all-passwords", studentController.ResetAllPasswords)
	}
}

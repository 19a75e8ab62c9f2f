package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ihya/config"
	"ihya/controllers"
	"ihya/middleware"
	"ihya/services"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, activity *services.ActivityService) {
	authMiddleware := middleware.AuthMiddleware(db, cfg)
	adminMiddleware := middleware.AdminMiddleware()

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, activity)
	app.Post("/api/auth/login", authController.Login)
	app.Get("/api/auth/me", authMiddleware, authController.Me)
	app.Post("/api/auth/logout", authMiddleware, authController.Logout)

	// User management (admin)
	usersController := controllers.NewUsersController(db, cfg)
	users := app.Group("/api/users", authMiddleware, adminMiddleware)
	users.Post("/", usersController.Create)
	users.Get("/", usersController.List)
	users.Put("/:id", usersController.Update)
	users.Delete("/:id", usersController.Delete)

	// Progress routes; the leaderboard is public for the landing page.
	progressController := controllers.NewProgressController(db, cfg, activity)
	app.Get("/api/progress/leaderboard", progressController.Leaderboard)
	app.Get("/api/progress/analytics", authMiddleware, adminMiddleware, progressController.GetAnalytics)
	app.Post("/api/progress", authMiddleware, progressController.MarkWatched)
	app.Get("/api/progress/my-progress", authMiddleware, progressController.MyProgress)
	app.Get("/api/progress/subjects", authMiddleware, progressController.SubjectsProgress)
	app.Get("/api/progress/subject/:id", authMiddleware, progressController.SubjectProgress)
	app.Get("/api/progress/stats", authMiddleware, progressController.Stats)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/subjects", coursesController.GetSubjects)
	courses.Get("/subject/:id/classes", coursesController.GetClassesBySubject)
	courses.Post("/subject", adminMiddleware, coursesController.CreateSubject)
	courses.Post("/class", adminMiddleware, coursesController.CreateClass)
	courses.Put("/class/:id", adminMiddleware, coursesController.UpdateClass)
	courses.Delete("/class/:id", adminMiddleware, coursesController.DeleteClass)
	courses.Post("/reorder", adminMiddleware, coursesController.ReorderClasses)
	courses.Get("/classes", adminMiddleware, coursesController.GetAllClasses)

	// Marks routes
	marksController := controllers.NewMarksController(db, cfg)
	marks := app.Group("/api/marks", authMiddleware)
	marks.Get("/my", marksController.MyMarks)
	marks.Post("/assignment", adminMiddleware, marksController.CreateAssignment)
	marks.Post("/exam", adminMiddleware, marksController.CreateExam)
	marks.Post("/assignment-score", adminMiddleware, marksController.AddAssignmentScore)
	marks.Post("/exam-score", adminMiddleware, marksController.AddExamScore)
	marks.Get("/student/:id", adminMiddleware, marksController.StudentMarks)

	// Announcements routes
	announcementsController := controllers.NewAnnouncementsController(db, cfg)
	announcements := app.Group("/api/announcements", authMiddleware)
	announcements.Get("/", announcementsController.Active)
	announcements.Get("/all", adminMiddleware, announcementsController.All)
	announcements.Post("/", adminMiddleware, announcementsController.Create)
	announcements.Delete("/:id", adminMiddleware, announcementsController.Delete)

	// Activity log (admin)
	activityController := controllers.NewActivityController(activity)
	app.Get("/api/activity/logs", authMiddleware, adminMiddleware, activityController.Logs)

	// Admin reports and snapshots
	reportsController := controllers.NewReportsController(db, cfg)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Get("/reports/leaderboard", reportsController.LeaderboardReport)
	admin.Get("/reports/marks", reportsController.MarksReport)
	admin.Get("/snapshots", reportsController.SnapshotHistory)
}

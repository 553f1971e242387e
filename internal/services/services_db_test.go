package services

import (
	"testing"

	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated sqlite database under the test's temp
// dir with the full schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(t.TempDir()+"/test.db"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Role{},
		&models.ProjectMember{},
		&models.BoardColumn{},
		&models.Sprint{},
		&models.Label{},
		&models.Ticket{},
		&models.Comment{},
		&models.Attachment{},
		&models.Webhook{},
		&models.WebhookDelivery{},
		&models.IMBot{},
		&models.SystemLog{},
		&models.RefreshToken{},
	)
	if err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func newTestAuthz(db *gorm.DB) *authz.Service {
	return authz.NewService(authz.NewGormStore(db))
}

func createTestUser(t *testing.T, db *gorm.DB, username string, isAdmin bool) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Nickname: username,
		IsAdmin:  isAdmin,
		AuthType: "local",
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return &user
}

// createTestProject provisions a project through the real provisioner
// so roles, membership and board columns exist.
func createTestProject(t *testing.T, db *gorm.DB, authzSvc *authz.Service, ownerID uint, key string) *models.Project {
	t.Helper()
	svc := NewProjectService(db, authzSvc)
	project, err := svc.Create(&CreateProjectRequest{Key: key, Name: key + " Project"}, ownerID)
	if err != nil {
		t.Fatalf("failed to provision project %s: %v", key, err)
	}
	return project
}

// projectRole fetches a seeded role by name.
func projectRole(t *testing.T, db *gorm.DB, projectID uint, name string) *models.Role {
	t.Helper()
	var role models.Role
	if err := db.Where("project_id = ? AND name = ?", projectID, name).First(&role).Error; err != nil {
		t.Fatalf("role %s not found in project %d: %v", name, projectID, err)
	}
	return &role
}

// addMemberWithRole inserts a membership row directly.
func addMemberWithRole(t *testing.T, db *gorm.DB, projectID, userID, roleID uint) {
	t.Helper()
	member := models.ProjectMember{ProjectID: projectID, UserID: userID, RoleID: roleID}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
}

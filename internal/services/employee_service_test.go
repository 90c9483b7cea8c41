package services

import (
	"testing"

	"github.com/emploai/emploai-server/internal/database"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// EmployeeServiceTestSuite defines the test suite for EmployeeService
type EmployeeServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *EmployeeService
	tasks   *TaskService
	user    *models.User
}

// SetupTest runs before each test
func (suite *EmployeeServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = database.MigrateWith(suite.db)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	employeeRepo := repository.NewEmployeeRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	auditService := NewAuditService(repository.NewAuditRepository(suite.db))
	suite.service = NewEmployeeService(employeeRepo, taskRepo, auditService)
	suite.tasks = NewTaskService(taskRepo, employeeRepo, nil, auditService)

	suite.user = &models.User{Email: "owner@example.com", PasswordHash: "x"}
	suite.Require().NoError(suite.db.Create(suite.user).Error)
}

// TearDownTest runs after each test
func (suite *EmployeeServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *EmployeeServiceTestSuite) hire(name string, expertise models.Expertise) *models.Employee {
	e, err := suite.service.Create(CreateEmployeeInput{
		UserID:    suite.user.ID,
		Name:      name,
		Gender:    models.GenderNeutral,
		Expertise: expertise,
	})
	suite.Require().NoError(err)
	return e
}

func (suite *EmployeeServiceTestSuite) TestCreate_Defaults() {
	e := suite.hire("Dana", models.ExpertiseHR)

	assert.Equal(suite.T(), models.LevelJunior, e.Level)
	assert.Equal(suite.T(), models.RoleEmployee, e.Role)
	assert.False(suite.T(), e.Deleted())
}

func (suite *EmployeeServiceTestSuite) TestCreate_Validation() {
	_, err := suite.service.Create(CreateEmployeeInput{
		UserID: suite.user.ID, Gender: models.GenderMale, Expertise: models.ExpertiseHR,
	})
	assert.ErrorIs(suite.T(), err, ErrNameRequired)

	_, err = suite.service.Create(CreateEmployeeInput{
		UserID: suite.user.ID, Name: "X", Gender: "robot", Expertise: models.ExpertiseHR,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidGender)

	_, err = suite.service.Create(CreateEmployeeInput{
		UserID: suite.user.ID, Name: "X", Gender: models.GenderMale, Expertise: "Astrology",
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidExpertise)
}

// Firing an employee hides it from the roster but keeps the row reachable,
// so a task that still points at it renders a stale name instead of a hole.
func (suite *EmployeeServiceTestSuite) TestSoftDelete_Lifecycle() {
	sam := suite.hire("Sam", models.ExpertiseTech)

	task, err := suite.tasks.Create(CreateTaskInput{
		Title:              "Migrate the database",
		AssignedEmployeeID: &sam.ID,
		CreatedBy:          suite.user.ID,
	})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.SoftDelete(sam.ID, suite.user.ID))

	// Roster no longer lists Sam.
	roster, err := suite.service.List(suite.user.ID)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), roster)

	// Direct lookup still resolves, marked deleted.
	got, err := suite.service.Get(sam.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), got.Deleted())
	assert.Equal(suite.T(), "Sam", got.Name)

	// The task keeps its stale assignee join.
	reloaded, err := suite.tasks.Get(task.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(reloaded.AssignedEmployee)
	assert.Equal(suite.T(), "Sam", reloaded.AssignedEmployee.Name)
	assert.True(suite.T(), reloaded.AssignedEmployee.Deleted())
}

func (suite *EmployeeServiceTestSuite) TestSoftDelete_OwnershipAndDouble() {
	e := suite.hire("Dana", models.ExpertiseHR)

	err := suite.service.SoftDelete(e.ID, uuid.New())
	assert.ErrorIs(suite.T(), err, ErrNotEmployeeOwner)

	suite.Require().NoError(suite.service.SoftDelete(e.ID, suite.user.ID))
	err = suite.service.SoftDelete(e.ID, suite.user.ID)
	assert.ErrorIs(suite.T(), err, ErrEmployeeIsDeleted)
}

func (suite *EmployeeServiceTestSuite) TestManager() {
	got, err := suite.service.Manager(suite.user.ID)
	suite.Require().NoError(err)
	assert.Nil(suite.T(), got)

	m := &models.Employee{
		UserID: suite.user.ID, Name: "Morgan",
		Gender: models.GenderNeutral, Expertise: models.ExpertiseHR,
		Level: models.LevelSenior, Role: models.RoleManager,
	}
	suite.Require().NoError(suite.db.Create(m).Error)

	got, err = suite.service.Manager(suite.user.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	assert.Equal(suite.T(), "Morgan", got.Name)
}

func (suite *EmployeeServiceTestSuite) TestGetInsights() {
	suite.hire("Dana", models.ExpertiseHR)
	suite.hire("Kai", models.ExpertiseFinance)

	t1, err := suite.tasks.Create(CreateTaskInput{Title: "a", CreatedBy: suite.user.ID})
	suite.Require().NoError(err)
	_, err = suite.tasks.Create(CreateTaskInput{Title: "b", CreatedBy: suite.user.ID})
	suite.Require().NoError(err)
	_, err = suite.tasks.Verify(t1.ID, suite.user.ID, true)
	suite.Require().NoError(err)

	insights, err := suite.service.GetInsights(suite.user.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(2), insights.ActiveEmployees)
	assert.Equal(suite.T(), int64(1), insights.PendingTasks)
	assert.Equal(suite.T(), int64(1), insights.CompletedTasks)
}

func TestEmployeeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EmployeeServiceTestSuite))
}

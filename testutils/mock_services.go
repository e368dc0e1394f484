package testutils

import (
	"net/http"

	"spoolman/spoolman/broker"
	"spoolman/spoolman/database"
	"spoolman/spoolman/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockPrintJobService mocks the PrintJobServiceInterface for testing
type MockPrintJobService struct {
	mock.Mock
}

func (m *MockPrintJobService) CreatePrintJob(db *database.Database, params models.PrintJobParameters) (models.PrintJob, error) {
	args := m.Called(db, params)
	return args.Get(0).(models.PrintJob), args.Error(1)
}

func (m *MockPrintJobService) GetPrintJobById(db *database.Database, id int) (models.PrintJob, error) {
	args := m.Called(db, id)
	return args.Get(0).(models.PrintJob), args.Error(1)
}

func (m *MockPrintJobService) FindPrintJobs(db *database.Database, filter models.PrintJobFilter) ([]models.PrintJob, int64, error) {
	args := m.Called(db, filter)
	return args.Get(0).([]models.PrintJob), args.Get(1).(int64), args.Error(2)
}

func (m *MockPrintJobService) UpdatePrintJob(db *database.Database, id int, patch models.PrintJobUpdate) (models.PrintJob, error) {
	args := m.Called(db, id, patch)
	return args.Get(0).(models.PrintJob), args.Error(1)
}

func (m *MockPrintJobService) DeletePrintJob(db *database.Database, id int) error {
	args := m.Called(db, id)
	return args.Error(0)
}

// MockSpoolService mocks the SpoolServiceInterface for testing
type MockSpoolService struct {
	mock.Mock
}

func (m *MockSpoolService) CreateSpool(db *database.Database, params models.SpoolParameters) (models.Spool, error) {
	args := m.Called(db, params)
	return args.Get(0).(models.Spool), args.Error(1)
}

func (m *MockSpoolService) GetSpoolById(db *database.Database, id int) (models.Spool, error) {
	args := m.Called(db, id)
	return args.Get(0).(models.Spool), args.Error(1)
}

func (m *MockSpoolService) GetSpools(db *database.Database, filamentID *int) ([]models.Spool, error) {
	args := m.Called(db, filamentID)
	return args.Get(0).([]models.Spool), args.Error(1)
}

func (m *MockSpoolService) DeleteSpool(db *database.Database, id int) error {
	args := m.Called(db, id)
	return args.Error(0)
}

// MockFilamentService mocks the FilamentServiceInterface for testing
type MockFilamentService struct {
	mock.Mock
}

func (m *MockFilamentService) CreateFilament(db *database.Database, params models.FilamentParameters) (models.Filament, error) {
	args := m.Called(db, params)
	return args.Get(0).(models.Filament), args.Error(1)
}

func (m *MockFilamentService) GetFilamentById(db *database.Database, id int) (models.Filament, error) {
	args := m.Called(db, id)
	return args.Get(0).(models.Filament), args.Error(1)
}

func (m *MockFilamentService) GetFilaments(db *database.Database) ([]models.Filament, error) {
	args := m.Called(db)
	return args.Get(0).([]models.Filament), args.Error(1)
}

// MockWebSocketService records which topic a connection asked for instead
// of upgrading it.
type MockWebSocketService struct {
	mock.Mock
}

func (m *MockWebSocketService) HandleConnection(c *gin.Context, topic broker.Topic) {
	m.Called(topic)
	c.String(http.StatusOK, "upgraded")
}

func (m *MockWebSocketService) ConnectionCount() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockWebSocketService) Stop() {
	m.Called()
}

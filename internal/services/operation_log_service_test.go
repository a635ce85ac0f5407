package services

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OperationLogServiceTestSuite 定义操作日志服务测试套件
type OperationLogServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	mock    sqlmock.Sqlmock
	service *OperationLogService
}

// SetupTest 每个测试前的设置
func (s *OperationLogServiceTestSuite) SetupTest() {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	s.Require().NoError(err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)

	s.db = gormDB
	s.mock = mock
	s.service = NewOperationLogService(gormDB)
}

// TearDownTest 每个测试后的清理
func (s *OperationLogServiceTestSuite) TearDownTest() {
	if s.db != nil {
		sqlDB, _ := s.db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}
}

// TestRecord 测试记录操作日志
func (s *OperationLogServiceTestSuite) TestRecord() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `operation_logs`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectCommit()

	err := s.service.Record(&LogEntry{
		Username:     "admin",
		Method:       "PUT",
		Path:         "/api/v1/groups/alpha/rename",
		Module:       "group",
		Action:       "rename",
		ResourceType: "group",
		ResourceName: "alpha",
		StatusCode:   200,
		Success:      true,
		ClientIP:     "10.0.0.1",
		Duration:     12,
	})
	assert.NoError(s.T(), err)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

// TestRecord_DBError 测试数据库写入失败
func (s *OperationLogServiceTestSuite) TestRecord_DBError() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `operation_logs`")).
		WillReturnError(gorm.ErrInvalidDB)
	s.mock.ExpectRollback()

	err := s.service.Record(&LogEntry{Username: "admin", Method: "POST"})
	assert.Error(s.T(), err)
}

// TestList 测试分页查询
func (s *OperationLogServiceTestSuite) TestList() {
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `operation_logs`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows([]string{"id", "username", "module", "action", "success"}).
		AddRow(2, "admin", "pod", "delete", true).
		AddRow(1, "admin", "group", "rename", true)
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `operation_logs`")).
		WillReturnRows(rows)

	result, err := s.service.List(ListQuery{Username: "admin", Page: 1, PageSize: 20})
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), result.Total)
	assert.Len(s.T(), result.Logs, 2)
	assert.Equal(s.T(), "pod", result.Logs[0].Module)
}

// TestList_SuccessFilter 测试按结果过滤
func (s *OperationLogServiceTestSuite) TestList_SuccessFilter() {
	s.mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectQuery("SELECT \\* FROM `operation_logs`.*success").
		WillReturnRows(sqlmock.NewRows([]string{"id", "success"}).AddRow(3, false))

	failed := false
	result, err := s.service.List(ListQuery{Success: &failed})
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), result.Total)
}

// TestOperationLogServiceTestSuite 运行测试套件
func TestOperationLogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OperationLogServiceTestSuite))
}

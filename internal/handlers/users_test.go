package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/kamino-labs/kamino-portal/internal/client"
)

// UserHandlerTestSuite 用户处理器测试套件
type UserHandlerTestSuite struct {
	suite.Suite
	backend *httptest.Server
	router  *gin.Engine

	mu      sync.Mutex
	deletes []string
}

// SetupTest 每个测试前的设置
func (s *UserHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.deletes = nil

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"users": []map[string]interface{}{
				{"name": "admin", "enabled": true, "is_admin": true, "groups": []interface{}{}},
				{"name": "student-1", "enabled": true, "groups": []map[string]interface{}{{"name": "ctf-2026"}}},
				{"name": "student-2", "enabled": false, "groups": []interface{}{}},
			},
		})
	})
	mux.HandleFunc("/api/v1/user/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			s.mu.Lock()
			s.deletes = append(s.deletes, strings.TrimPrefix(r.URL.Path, "/api/v1/user/"))
			s.mu.Unlock()
		}
		w.WriteHeader(http.StatusOK)
	})
	s.backend = httptest.NewServer(mux)

	handler := NewUserHandler(client.New(s.backend.URL, "", 5*time.Second), NewEventHub())

	s.router = gin.New()
	s.router.GET("/api/v1/users", handler.GetUsers)
	s.router.POST("/api/v1/users/bulk-delete", handler.BulkDeleteUsers)
	s.router.PATCH("/api/v1/users/:name/enabled", handler.SetUserEnabled)
}

// TearDownTest 每个测试后的清理
func (s *UserHandlerTestSuite) TearDownTest() {
	s.backend.Close()
}

// TestSearchByGroupName 搜索词可以命中所属用户组
func (s *UserHandlerTestSuite) TestSearchByGroupName() {
	req := httptest.NewRequest("GET", "/api/v1/users?search=ctf", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Total int `json:"total"`
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(1, resp.Data.Total)
	s.Equal("student-1", resp.Data.Items[0].Name)
}

// TestBulkDeleteAdminForbidden 管理员账号不允许删除
func (s *UserHandlerTestSuite) TestBulkDeleteAdminForbidden() {
	body, _ := json.Marshal(map[string]interface{}{
		"names": []string{"admin", "student-1"},
	})
	req := httptest.NewRequest("POST", "/api/v1/users/bulk-delete", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusForbidden, w.Code)
	s.Empty(s.deletes)
}

// TestBulkDeleteUsers 普通用户正常删除
func (s *UserHandlerTestSuite) TestBulkDeleteUsers() {
	body, _ := json.Marshal(map[string]interface{}{
		"names": []string{"student-1", "student-2"},
	})
	req := httptest.NewRequest("POST", "/api/v1/users/bulk-delete", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Equal([]string{"student-1", "student-2"}, s.deletes)
}

// TestDisableAdminForbidden 管理员账号不允许禁用
func (s *UserHandlerTestSuite) TestDisableAdminForbidden() {
	body, _ := json.Marshal(map[string]interface{}{"enabled": false})
	req := httptest.NewRequest("PATCH", "/api/v1/users/admin/enabled", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusForbidden, w.Code)
}

// TestUserHandlerTestSuite 运行测试套件
func TestUserHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}

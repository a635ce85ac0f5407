package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/kamino-labs/kamino-portal/internal/client"
	"github.com/kamino-labs/kamino-portal/internal/wizard"
)

// WizardHandlerTestSuite 向导处理器测试套件
type WizardHandlerTestSuite struct {
	suite.Suite
	backend  *httptest.Server
	router   *gin.Engine
	manager  *wizard.Manager
	deployed map[string]string
}

// SetupTest 每个测试前的设置
func (s *WizardHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.deployed = nil

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/pod/deploy", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&s.deployed)
		w.WriteHeader(http.StatusOK)
	})
	s.backend = httptest.NewServer(mux)

	s.manager = wizard.NewManager(time.Hour)
	handler := NewWizardHandler(s.manager, client.New(s.backend.URL, "", 5*time.Second), NewEventHub())

	s.router = gin.New()
	s.router.POST("/api/v1/wizards", handler.CreateSession)
	s.router.GET("/api/v1/wizards/:id", handler.GetSession)
	s.router.POST("/api/v1/wizards/:id/next", handler.NextStep)
	s.router.POST("/api/v1/wizards/:id/submit", handler.Submit)
}

// TearDownTest 每个测试后的清理
func (s *WizardHandlerTestSuite) TearDownTest() {
	s.manager.Close()
	s.backend.Close()
}

// post 发送 JSON 请求并解析响应
func (s *WizardHandlerTestSuite) post(path string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

// TestDeployWizardFlow 部署向导从创建到提交的完整流程
func (s *WizardHandlerTestSuite) TestDeployWizardFlow() {
	w, resp := s.post("/api/v1/wizards", map[string]string{"kind": "deploy"})
	s.Require().Equal(http.StatusOK, w.Code)
	state := resp["data"].(map[string]interface{})
	id := state["id"].(string)
	s.Equal(float64(1), state["step"])

	// 字段缺失时无法进入下一步
	w, _ = s.post("/api/v1/wizards/"+id+"/next", map[string]interface{}{
		"fields": map[string]interface{}{"template": "web-sec-lab"},
	})
	s.Equal(http.StatusBadRequest, w.Code)

	// 补全字段后进入进度步骤
	w, resp = s.post("/api/v1/wizards/"+id+"/next", map[string]interface{}{
		"fields": map[string]interface{}{"pod_name": "web-sec-lab-01"},
	})
	s.Require().Equal(http.StatusOK, w.Code)
	state = resp["data"].(map[string]interface{})
	s.Equal(float64(2), state["step"])

	// 提交触发后端部署
	w, resp = s.post("/api/v1/wizards/"+id+"/submit", map[string]interface{}{})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("web-sec-lab", s.deployed["template"])
	s.Equal("web-sec-lab-01", s.deployed["name"])

	state = resp["data"].(map[string]interface{})
	s.Equal(true, state["success"])
	s.Equal(false, state["dirty"])
}

// TestUnknownKind 未知向导类型返回 400
func (s *WizardHandlerTestSuite) TestUnknownKind() {
	w, _ := s.post("/api/v1/wizards", map[string]string{"kind": "teleport"})
	s.Equal(http.StatusBadRequest, w.Code)
}

// TestUnknownSession 不存在的会话返回 404
func (s *WizardHandlerTestSuite) TestUnknownSession() {
	req := httptest.NewRequest("GET", "/api/v1/wizards/no-such-id", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusNotFound, w.Code)
}

// TestWizardHandlerTestSuite 运行测试套件
func TestWizardHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(WizardHandlerTestSuite))
}

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

// PodHandlerTestSuite Pod 处理器测试套件
type PodHandlerTestSuite struct {
	suite.Suite
	backend *httptest.Server
	router  *gin.Engine

	mu      sync.Mutex
	deletes []string
}

// SetupTest 每个测试前的设置
func (s *PodHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.deletes = nil

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/pods", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"name": "pod-1", "vms": []interface{}{}},
			{"name": "pod-2", "vms": []interface{}{}},
			{"name": "pod-3", "vms": []interface{}{}},
		})
	})
	mux.HandleFunc("/api/v1/pod/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/v1/pod/")

		s.mu.Lock()
		s.deletes = append(s.deletes, name)
		s.mu.Unlock()

		// pod-2 删除失败，其余成功
		if name == "pod-2" {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Proxmox task failed"})
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	s.backend = httptest.NewServer(mux)

	backendClient := client.New(s.backend.URL, "", 5*time.Second)
	handler := NewPodHandler(backendClient, NewEventHub())

	s.router = gin.New()
	s.router.GET("/api/v1/pods", handler.GetPods)
	s.router.POST("/api/v1/pods/bulk-delete", handler.BulkDeletePods)
	s.router.POST("/api/v1/pods/deploy", handler.DeployPod)
}

// TearDownTest 每个测试后的清理
func (s *PodHandlerTestSuite) TearDownTest() {
	s.backend.Close()
}

// TestBulkDeletePartialFailure 单项失败不中断其余项，结果结构化返回
func (s *PodHandlerTestSuite) TestBulkDeletePartialFailure() {
	body, _ := json.Marshal(map[string]interface{}{
		"names": []string{"pod-1", "pod-2", "pod-3"},
	})
	req := httptest.NewRequest("POST", "/api/v1/pods/bulk-delete", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	// 三个 Pod 都被尝试删除
	s.Len(s.deletes, 3)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Succeeded []string `json:"succeeded"`
			Failed    []struct {
				ID      string `json:"id"`
				Message string `json:"message"`
			} `json:"failed"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(207, resp.Code)
	s.Equal([]string{"pod-1", "pod-3"}, resp.Data.Succeeded)
	s.Require().Len(resp.Data.Failed, 1)
	s.Equal("pod-2", resp.Data.Failed[0].ID)
	s.Contains(resp.Data.Failed[0].Message, "Proxmox task failed")
}

// TestBulkDeletePrunesMissing 已不存在的 Pod 从请求集合中剔除
func (s *PodHandlerTestSuite) TestBulkDeletePrunesMissing() {
	body, _ := json.Marshal(map[string]interface{}{
		"names": []string{"pod-1", "pod-gone"},
	})
	req := httptest.NewRequest("POST", "/api/v1/pods/bulk-delete", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Equal([]string{"pod-1"}, s.deletes)
}

// TestGetPodsInvalidPageSize 非法分页大小返回 400
func (s *PodHandlerTestSuite) TestGetPodsInvalidPageSize() {
	req := httptest.NewRequest("GET", "/api/v1/pods?pageSize=33", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

// TestGetPodsSearch 搜索命中名称
func (s *PodHandlerTestSuite) TestGetPodsSearch() {
	req := httptest.NewRequest("GET", "/api/v1/pods?search=POD-2", nil)
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
	s.Require().Len(resp.Data.Items, 1)
	s.Equal("pod-2", resp.Data.Items[0].Name)
}

// TestDeployPod 部署请求透传到后端
func (s *PodHandlerTestSuite) TestDeployPod() {
	// 独立的后端桩，记录部署请求
	var deployed map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/pod/deploy", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&deployed)
		w.WriteHeader(http.StatusOK)
	})
	backend := httptest.NewServer(mux)
	defer backend.Close()

	handler := NewPodHandler(client.New(backend.URL, "", 5*time.Second), NewEventHub())
	router := gin.New()
	router.POST("/api/v1/pods/deploy", handler.DeployPod)

	body, _ := json.Marshal(map[string]string{
		"template": "web-sec-lab",
		"name":     "web-sec-lab-01",
	})
	req := httptest.NewRequest("POST", "/api/v1/pods/deploy", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("web-sec-lab", deployed["template"])
	s.Equal("web-sec-lab-01", deployed["name"])
}

// TestPodHandlerTestSuite 运行测试套件
func TestPodHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(PodHandlerTestSuite))
}

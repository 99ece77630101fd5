package websocket

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	apiconfig "github.com/deltaswapio/token-bridge-relayer/internal/config/api"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/event"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
)

// WebSocket连接指标
var (
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tbr",
		Subsystem: "api",
		Name:      "websocket_connections",
		Help:      "Number of active WebSocket connections",
	})

	wsConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tbr",
		Subsystem: "api",
		Name:      "websocket_connections_total",
		Help:      "Total number of accepted WebSocket connections",
	})
)

func init() {
	prometheus.MustRegister(wsConnections, wsConnectionsTotal)
}

// Server WebSocket服务器
//
// 🔌 挂载在HTTP服务的 /api/v1/registry/events/ws 端点上，
// 以JSON-RPC 2.0协议受理订阅请求并实时推送注册表事件。
//
// 客户端协议：
//
//	订阅:   {"jsonrpc":"2.0","id":1,"method":"tbr_subscribe","params":["tokenRegistered",{"replay":true}]}
//	退订:   {"jsonrpc":"2.0","id":2,"method":"tbr_unsubscribe","params":["0x12345678"]}
//	推送:   {"jsonrpc":"2.0","method":"tbr_subscription","params":{"subscription":"0x12345678","result":{...}}}
type Server struct {
	logger              log.Logger
	subscriptionManager *SubscriptionManager
	upgrader            websocket.Upgrader
	maxConnections      int
	activeConns         atomic.Int64
}

// rpcRequest JSON-RPC 2.0 请求
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// rpcResponse JSON-RPC 2.0 成功响应
type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result"`
}

// NewServer 创建WebSocket服务器
func NewServer(logger log.Logger, eventBus event.EventBus, wsConfig *apiconfig.WebSocketConfig) *Server {
	return &Server{
		logger:              logger,
		subscriptionManager: NewSubscriptionManager(logger, eventBus),
		maxConnections:      wsConfig.MaxConnections,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// 跨域策略由HTTP层的CORS中间件统一执行
				return true
			},
			ReadBufferSize:  wsConfig.ReadBufferSize,
			WriteBufferSize: wsConfig.WriteBufferSize,
		},
	}
}

// Manager 返回订阅管理器
func (s *Server) Manager() *SubscriptionManager {
	return s.subscriptionManager
}

// HandleWebSocket 处理WebSocket连接（Gin Handler）
func (s *Server) HandleWebSocket(c *gin.Context) {
	// 连接数达到上限时在升级前拒绝
	if s.maxConnections > 0 && s.activeConns.Load() >= int64(s.maxConnections) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "websocket connection limit reached",
		})
		return
	}

	// 升级HTTP连接为WebSocket
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Errorf("WebSocket升级失败: %v", err)
		}
		return
	}

	s.activeConns.Add(1)
	wsConnections.Inc()
	wsConnectionsTotal.Inc()

	defer func() {
		// 清理该连接的所有订阅，防止事件总线处理器泄漏
		s.subscriptionManager.CleanupByConnection(conn)

		if err := conn.Close(); err != nil && s.logger != nil {
			s.logger.Debugf("关闭WebSocket连接失败: %v", err)
		}

		s.activeConns.Add(-1)
		wsConnections.Dec()
	}()

	if s.logger != nil {
		s.logger.Infof("WebSocket连接建立: remote=%s", conn.RemoteAddr())
	}

	// 处理JSON-RPC消息
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				if s.logger != nil {
					s.logger.Warnf("WebSocket连接异常关闭: %v", err)
				}
			}
			break
		}

		if messageType != websocket.TextMessage {
			continue
		}

		s.handleJSONRPCMessage(conn, message)
	}

	if s.logger != nil {
		s.logger.Infof("WebSocket连接关闭: remote=%s", conn.RemoteAddr())
	}
}

// handleJSONRPCMessage 处理JSON-RPC消息
func (s *Server) handleJSONRPCMessage(conn *websocket.Conn, message []byte) {
	var request rpcRequest
	if err := json.Unmarshal(message, &request); err != nil {
		s.sendError(conn, nil, -32700, "Parse error", nil)
		return
	}

	switch request.Method {
	case "tbr_subscribe":
		s.handleSubscribe(conn, &request)
	case "tbr_unsubscribe":
		s.handleUnsubscribe(conn, &request)
	default:
		s.sendError(conn, request.ID, -32601, "Method not found", nil)
	}
}

// handleSubscribe 处理订阅请求
//
// 参数格式: [subscriptionType, options (optional)]
// options: {"replay": bool} 订阅时回放历史事件
func (s *Server) handleSubscribe(conn *websocket.Conn, request *rpcRequest) {
	var params []json.RawMessage
	if err := json.Unmarshal(request.Params, &params); err != nil {
		s.sendError(conn, request.ID, -32602, "Invalid params", nil)
		return
	}

	if len(params) == 0 {
		s.sendError(conn, request.ID, -32602, "Missing subscription type", nil)
		return
	}

	var subType string
	if err := json.Unmarshal(params[0], &subType); err != nil {
		s.sendError(conn, request.ID, -32602, "Subscription type must be string", nil)
		return
	}

	replay := false
	if len(params) > 1 {
		var opts struct {
			Replay bool `json:"replay"`
		}
		if err := json.Unmarshal(params[1], &opts); err != nil {
			s.sendError(conn, request.ID, -32602, "Invalid subscription options", nil)
			return
		}
		replay = opts.Replay
	}

	subscriptionID, err := s.subscriptionManager.Subscribe(conn, subType)
	if err != nil {
		if s.logger != nil {
			s.logger.Warnf("创建订阅失败: type=%s err=%v", subType, err)
		}
		s.sendError(conn, request.ID, -32000, "Failed to subscribe", err.Error())
		return
	}

	// 订阅确认先于任何事件推送到达客户端，回放紧随其后
	s.sendResult(conn, request.ID, subscriptionID)
	if replay {
		s.subscriptionManager.ReplayHistory(subscriptionID)
	}
}

// handleUnsubscribe 处理取消订阅请求
//
// 参数格式: [subscriptionID]
func (s *Server) handleUnsubscribe(conn *websocket.Conn, request *rpcRequest) {
	var params []string
	if err := json.Unmarshal(request.Params, &params); err != nil {
		s.sendError(conn, request.ID, -32602, "Invalid params", nil)
		return
	}

	if len(params) == 0 {
		s.sendError(conn, request.ID, -32602, "Missing subscription ID", nil)
		return
	}

	if err := s.subscriptionManager.Unsubscribe(params[0]); err != nil {
		s.sendError(conn, request.ID, -32000, "Failed to unsubscribe", err.Error())
		return
	}

	s.sendResult(conn, request.ID, true)
}

// sendResult 发送JSON-RPC成功响应
func (s *Server) sendResult(conn *websocket.Conn, id interface{}, result interface{}) {
	data, err := json.Marshal(rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Errorf("序列化响应失败: %v", err)
		}
		return
	}

	if err := s.subscriptionManager.writeMessage(conn, data); err != nil && s.logger != nil {
		s.logger.Warnf("发送响应失败: %v", err)
	}
}

// sendError 发送JSON-RPC错误响应
func (s *Server) sendError(conn *websocket.Conn, id interface{}, code int, message string, data interface{}) {
	errorObj := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if data != nil {
		errorObj["data"] = data
	}

	responseData, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   errorObj,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Errorf("序列化错误响应失败: %v", err)
		}
		return
	}

	if err := s.subscriptionManager.writeMessage(conn, responseData); err != nil && s.logger != nil {
		s.logger.Warnf("发送错误响应失败: %v", err)
	}
}

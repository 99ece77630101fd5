package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deltaswapio/token-bridge-relayer/internal/api/http/middleware"
	apitypes "github.com/deltaswapio/token-bridge-relayer/internal/api/types"
	"github.com/deltaswapio/token-bridge-relayer/pkg/interfaces/infrastructure/log"
	"github.com/deltaswapio/token-bridge-relayer/pkg/types"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string)                          {}
func (m *mockLogger) Debugf(format string, args ...interface{}) {}
func (m *mockLogger) Info(msg string)                           {}
func (m *mockLogger) Infof(format string, args ...interface{})  {}
func (m *mockLogger) Warn(msg string)                           {}
func (m *mockLogger) Warnf(format string, args ...interface{})  {}
func (m *mockLogger) Error(msg string)                          {}
func (m *mockLogger) Errorf(format string, args ...interface{}) {}
func (m *mockLogger) Fatal(msg string)                          {}
func (m *mockLogger) Fatalf(format string, args ...interface{}) {}
func (m *mockLogger) With(args ...interface{}) log.Logger       { return m }
func (m *mockLogger) Sync() error                               { return nil }
func (m *mockLogger) GetZapLogger() *zap.Logger                 { return zap.NewNop() }

// mockRegistry 受控的注册核心，记录调用参数并按注入的脚本应答
type mockRegistry struct {
	registerErr  error
	registerResp *types.RegisteredToken
	lastCaller   types.Principal
	lastMint     types.MintAddress
	lastRate     uint64
	lastMax      uint64

	tokens  map[types.MintAddress]*types.RegisteredToken
	entries []types.TokenListEntry
	listErr error
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{tokens: make(map[types.MintAddress]*types.RegisteredToken)}
}

func (m *mockRegistry) Register(ctx context.Context, caller types.Principal, mint types.MintAddress, swapRate, maxNativeSwapAmount uint64) (*types.RegisteredToken, error) {
	m.lastCaller = caller
	m.lastMint = mint
	m.lastRate = swapRate
	m.lastMax = maxNativeSwapAmount
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	if m.registerResp != nil {
		return m.registerResp, nil
	}
	return &types.RegisteredToken{
		SwapRate:            swapRate,
		MaxNativeSwapAmount: maxNativeSwapAmount,
		IsRegistered:        true,
	}, nil
}

func (m *mockRegistry) GetToken(ctx context.Context, mint types.MintAddress) (*types.RegisteredToken, error) {
	if token, ok := m.tokens[mint]; ok {
		cp := *token
		return &cp, nil
	}
	return nil, types.ErrTokenNotFound
}

func (m *mockRegistry) ListTokens(ctx context.Context) ([]types.TokenListEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.entries, nil
}

// mockConfigStore 受控的所有者配置服务
type mockConfigStore struct {
	owner       types.Principal
	getErr      error
	initErr     error
	initialized types.Principal
}

func (m *mockConfigStore) GetOwner(ctx context.Context) (types.Principal, error) {
	if m.getErr != nil {
		return types.Principal{}, m.getErr
	}
	return m.owner, nil
}

func (m *mockConfigStore) InitializeOwner(ctx context.Context, owner types.Principal) error {
	if m.initErr != nil {
		return m.initErr
	}
	m.initialized = owner
	return nil
}

// mockAssetDirectory 单一原生资产的资产目录
type mockAssetDirectory struct {
	native types.MintAddress
}

func (m *mockAssetDirectory) IsNativeAsset(mint types.MintAddress) bool { return mint == m.native }
func (m *mockAssetDirectory) NativeMint() types.MintAddress             { return m.native }

func testMint(id byte) types.MintAddress {
	var mint types.MintAddress
	mint[0] = id
	for i := 1; i < len(mint); i++ {
		mint[i] = 0x5A
	}
	return mint
}

func testPrincipal(id byte) types.Principal {
	var p types.Principal
	p[0] = id
	for i := 1; i < len(p); i++ {
		p[i] = 0xC3
	}
	return p
}

// handlerFixture 一组受控依赖加上装配完成的路由
type handlerFixture struct {
	registry    *mockRegistry
	configStore *mockConfigStore
	assets      *mockAssetDirectory
	router      *gin.Engine
}

// newHandlerFixture 构造测试路由
//
// 路由链包含请求ID与错误翻译中间件，领域错误的HTTP映射
// 正是在这条链上完成的，因此测试走完整的请求路径。
func newHandlerFixture(owner types.Principal, native types.MintAddress) *handlerFixture {
	gin.SetMode(gin.TestMode)

	f := &handlerFixture{
		registry:    newMockRegistry(),
		configStore: &mockConfigStore{owner: owner},
		assets:      &mockAssetDirectory{native: native},
	}

	router := gin.New()
	router.Use(middleware.NewRequestID().Middleware())
	router.Use(middleware.ErrorHandler(&mockLogger{}))

	handler := NewRegistryHandler(f.registry, f.configStore, f.assets, &mockLogger{})
	v1 := router.Group("/api/v1")
	handler.RegisterRoutes(v1)

	f.router = router
	return f
}

// doJSON 发送一个JSON请求并返回响应记录
func (f *handlerFixture) doJSON(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

// decodeProblem 解码 Problem Details 错误响应
func decodeProblem(t *testing.T, recorder *httptest.ResponseRecorder) *apitypes.ProblemDetails {
	t.Helper()
	var problem apitypes.ProblemDetails
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &problem))
	return &problem
}

// decodeData 解码成功响应的data字段
func decodeData(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data      map[string]interface{} `json:"data"`
		RequestID string                 `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Data
}

// TestRegisterTokenEndpoint 测试代币注册端点的成功与失败映射
func TestRegisterTokenEndpoint(t *testing.T) {
	owner := testPrincipal(0x01)
	native := testMint(0xFE)
	mint := testMint(0x10)
	ownerHeader := map[string]string{HeaderRelayerOwner: owner.String()}

	t.Run("注册成功返回201与完整记录", func(t *testing.T) {
		f := newHandlerFixture(owner, native)

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/tokens", map[string]interface{}{
			"mint":                   mint.String(),
			"swap_rate":              1000000,
			"max_native_swap_amount": 500,
		}, ownerHeader)

		require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

		data := decodeData(t, recorder)
		assert.Equal(t, mint.String(), data["mint"])
		assert.Equal(t, float64(1000000), data["swap_rate"])
		assert.Equal(t, float64(500), data["max_native_swap_amount"])
		assert.Equal(t, true, data["is_registered"])
		assert.Equal(t, false, data["is_native"])

		// 参数原样穿透到注册核心
		assert.Equal(t, owner, f.registry.lastCaller)
		assert.Equal(t, mint, f.registry.lastMint)
		assert.Equal(t, uint64(1000000), f.registry.lastRate)
		assert.Equal(t, uint64(500), f.registry.lastMax)

		// 请求ID头与响应体保持一致
		assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
	})

	t.Run("缺少身份请求头返回400", func(t *testing.T) {
		f := newHandlerFixture(owner, native)

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/tokens", map[string]interface{}{
			"mint":      mint.String(),
			"swap_rate": 100,
		}, nil)

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeCommonValidationError, problem.Code)
		assert.Equal(t, apitypes.LayerAPI, problem.Layer)
		assert.Equal(t, HeaderRelayerOwner, problem.Details["header"])
	})

	t.Run("身份头编码非法返回400", func(t *testing.T) {
		f := newHandlerFixture(owner, native)

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/tokens", map[string]interface{}{
			"mint":      mint.String(),
			"swap_rate": 100,
		}, map[string]string{HeaderRelayerOwner: "not-base58-0OIl"})

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeCommonValidationError, problem.Code)
	})

	t.Run("请求体缺少mint字段返回400", func(t *testing.T) {
		f := newHandlerFixture(owner, native)

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/tokens", map[string]interface{}{
			"swap_rate": 100,
		}, ownerHeader)

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeCommonValidationError, problem.Code)
	})

	t.Run("非所有者调用映射为403", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		f.registry.registerErr = &types.RegistrationError{Reason: types.RegistrationRejectOwnerOnly, Mint: mint}

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/tokens", map[string]interface{}{
			"mint":      mint.String(),
			"swap_rate": 100,
		}, map[string]string{HeaderRelayerOwner: testPrincipal(0x02).String()})

		require.Equal(t, http.StatusForbidden, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeRegOwnerOnly, problem.Code)
		assert.Equal(t, apitypes.LayerTokenRegistry, problem.Layer)
		assert.Equal(t, mint.String(), problem.Details["mint"])
		assert.NotEmpty(t, problem.TraceID)
	})

	t.Run("重复注册映射为409", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		f.registry.registerErr = &types.RegistrationError{Reason: types.RegistrationRejectAlreadyRegistered, Mint: mint}

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/tokens", map[string]interface{}{
			"mint":      mint.String(),
			"swap_rate": 100,
		}, ownerHeader)

		require.Equal(t, http.StatusConflict, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeRegTokenExists, problem.Code)
	})

	t.Run("零汇率映射为400", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		f.registry.registerErr = &types.RegistrationError{Reason: types.RegistrationRejectZeroSwapRate, Mint: mint}

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/tokens", map[string]interface{}{
			"mint":      mint.String(),
			"swap_rate": 0,
		}, ownerHeader)

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeRegZeroSwapRate, problem.Code)
	})

	t.Run("原生资产非零额度映射为400", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		f.registry.registerErr = &types.RegistrationError{Reason: types.RegistrationRejectNativeSwapNotAllowed, Mint: native}

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/tokens", map[string]interface{}{
			"mint":                   native.String(),
			"swap_rate":              100,
			"max_native_swap_amount": 5,
		}, ownerHeader)

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeRegNativeSwapLimit, problem.Code)
	})

	t.Run("所有者未初始化映射为503", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		f.registry.registerErr = types.ErrSenderConfigNotInitialized

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/tokens", map[string]interface{}{
			"mint":      mint.String(),
			"swap_rate": 100,
		}, ownerHeader)

		require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeRegOwnerNotInitialized, problem.Code)
	})

	t.Run("原生资产注册成功时响应标记is_native", func(t *testing.T) {
		f := newHandlerFixture(owner, native)

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/tokens", map[string]interface{}{
			"mint":      native.String(),
			"swap_rate": 100,
		}, ownerHeader)

		require.Equal(t, http.StatusCreated, recorder.Code)
		data := decodeData(t, recorder)
		assert.Equal(t, true, data["is_native"])
		assert.Equal(t, float64(0), data["max_native_swap_amount"])
	})
}

// TestGetTokenEndpoint 测试单条查询端点
func TestGetTokenEndpoint(t *testing.T) {
	owner := testPrincipal(0x01)
	native := testMint(0xFE)
	mint := testMint(0x10)

	t.Run("已注册的Mint返回记录", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		f.registry.tokens[mint] = &types.RegisteredToken{SwapRate: 42, MaxNativeSwapAmount: 7, IsRegistered: true}

		recorder := f.doJSON(t, http.MethodGet, "/api/v1/registry/tokens/"+mint.String(), nil, nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		data := decodeData(t, recorder)
		assert.Equal(t, float64(42), data["swap_rate"])
		assert.Equal(t, float64(7), data["max_native_swap_amount"])
		assert.Equal(t, true, data["is_registered"])
	})

	t.Run("未注册的Mint返回404", func(t *testing.T) {
		f := newHandlerFixture(owner, native)

		recorder := f.doJSON(t, http.MethodGet, "/api/v1/registry/tokens/"+mint.String(), nil, nil)

		require.Equal(t, http.StatusNotFound, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeRegTokenNotFound, problem.Code)
	})

	t.Run("Mint编码非法返回400", func(t *testing.T) {
		f := newHandlerFixture(owner, native)

		recorder := f.doJSON(t, http.MethodGet, "/api/v1/registry/tokens/bad-mint-0OIl", nil, nil)

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeCommonValidationError, problem.Code)
		assert.Equal(t, "mint", problem.Details["field"])
	})
}

// TestListTokensEndpoint 测试列表端点的分页切片
func TestListTokensEndpoint(t *testing.T) {
	owner := testPrincipal(0x01)
	native := testMint(0xFE)

	seedEntries := func(f *handlerFixture, count int) {
		for i := 0; i < count; i++ {
			f.registry.entries = append(f.registry.entries, types.TokenListEntry{
				Mint:  testMint(byte(0x10 + i)),
				Token: types.RegisteredToken{SwapRate: uint64(i + 1), IsRegistered: true},
			})
		}
	}

	decodeList := func(t *testing.T, recorder *httptest.ResponseRecorder) (tokens []map[string]interface{}, pagination map[string]interface{}) {
		t.Helper()
		var envelope struct {
			Data struct {
				Tokens     []map[string]interface{} `json:"tokens"`
				Pagination map[string]interface{}   `json:"pagination"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		return envelope.Data.Tokens, envelope.Data.Pagination
	}

	t.Run("默认分页返回全部记录", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		seedEntries(f, 3)

		recorder := f.doJSON(t, http.MethodGet, "/api/v1/registry/tokens", nil, nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		tokens, pagination := decodeList(t, recorder)
		require.Len(t, tokens, 3)
		assert.Equal(t, float64(3), pagination["totalItems"])
		assert.Equal(t, float64(1), pagination["totalPages"])
		assert.Equal(t, false, pagination["hasNext"])
	})

	t.Run("第二页取剩余记录", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		seedEntries(f, 3)

		recorder := f.doJSON(t, http.MethodGet, "/api/v1/registry/tokens?page=2&pageSize=2", nil, nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		tokens, pagination := decodeList(t, recorder)
		require.Len(t, tokens, 1)
		assert.Equal(t, testMint(0x12).String(), tokens[0]["mint"])
		assert.Equal(t, float64(2), pagination["totalPages"])
		assert.Equal(t, true, pagination["hasPrev"])
		assert.Equal(t, false, pagination["hasNext"])
	})

	t.Run("越界页码返回空列表", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		seedEntries(f, 3)

		recorder := f.doJSON(t, http.MethodGet, "/api/v1/registry/tokens?page=9&pageSize=2", nil, nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		tokens, _ := decodeList(t, recorder)
		assert.Empty(t, tokens)
	})

	t.Run("空注册表返回空列表", func(t *testing.T) {
		f := newHandlerFixture(owner, native)

		recorder := f.doJSON(t, http.MethodGet, "/api/v1/registry/tokens", nil, nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		tokens, pagination := decodeList(t, recorder)
		assert.Empty(t, tokens)
		assert.Equal(t, float64(0), pagination["totalItems"])
	})
}

// TestOwnerEndpoints 测试所有者配置的查询与初始化端点
func TestOwnerEndpoints(t *testing.T) {
	owner := testPrincipal(0x01)
	native := testMint(0xFE)

	t.Run("已初始化时返回所有者", func(t *testing.T) {
		f := newHandlerFixture(owner, native)

		recorder := f.doJSON(t, http.MethodGet, "/api/v1/registry/owner", nil, nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		data := decodeData(t, recorder)
		assert.Equal(t, owner.String(), data["owner"])
		assert.Equal(t, true, data["initialized"])
	})

	t.Run("未初始化时返回200而非错误", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		f.configStore.getErr = types.ErrSenderConfigNotInitialized

		recorder := f.doJSON(t, http.MethodGet, "/api/v1/registry/owner", nil, nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		data := decodeData(t, recorder)
		assert.Equal(t, false, data["initialized"])
		_, hasOwner := data["owner"]
		assert.False(t, hasOwner, "未初始化时不应返回owner字段")
	})

	t.Run("初始化成功返回201", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		newOwner := testPrincipal(0x09)

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/owner", map[string]interface{}{
			"owner": newOwner.String(),
		}, nil)

		require.Equal(t, http.StatusCreated, recorder.Code)
		data := decodeData(t, recorder)
		assert.Equal(t, newOwner.String(), data["owner"])
		assert.Equal(t, true, data["initialized"])
		assert.Equal(t, newOwner, f.configStore.initialized)
	})

	t.Run("重复初始化映射为409", func(t *testing.T) {
		f := newHandlerFixture(owner, native)
		f.configStore.initErr = types.ErrSenderConfigExists

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/owner", map[string]interface{}{
			"owner": testPrincipal(0x09).String(),
		}, nil)

		require.Equal(t, http.StatusConflict, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeRegOwnerExists, problem.Code)
	})

	t.Run("所有者编码非法返回400", func(t *testing.T) {
		f := newHandlerFixture(owner, native)

		recorder := f.doJSON(t, http.MethodPost, "/api/v1/registry/owner", map[string]interface{}{
			"owner": "tooshort",
		}, nil)

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		problem := decodeProblem(t, recorder)
		assert.Equal(t, apitypes.CodeCommonValidationError, problem.Code)
		assert.Equal(t, "owner", problem.Details["field"])
	})
}

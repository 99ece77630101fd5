package registry

import "context"

// requestIDKey 用于在 context 中存储请求ID的私有 key 类型
type requestIDKey struct{}

// WithRequestID 将请求ID绑定到 context
//
// API层在接收请求时调用，注册核心发布事件时读取它并附加到事件数据，
// 使一次注册操作可以从访问日志一路追踪到事件流。
//
// 参数：
//   - ctx: 父 context
//   - requestID: 本次请求的唯一标识
//
// 返回：
//   - 携带请求ID的新 context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext 从 context 中读取请求ID
//
// 如果 context 中不存在请求ID，返回空字符串。
// 注册核心对请求ID只做透传，缺失不影响任何业务判定。
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(requestIDKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

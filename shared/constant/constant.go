package constant

// Context key types to avoid collisions
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
)

const (
	RequestParamID    = "id"
	RequestParamSkip  = "skip"
	RequestParamLimit = "limit"
)

const (
	DefaultValueSkip  = 0
	DefaultValueLimit = 100
)

const (
	OtelServiceScopeName    = "service"
	OtelRepositoryScopeName = "repository"
	OtelHandlerScopeName    = "handler"
	OtelDatabaseScopeName   = "database"

	OtelQueryAttributeKey = "query"
	OtelRoleAttributeKey  = "db.role"
)

const (
	RequestHeaderUserAgent          = "User-Agent"
	RequestHeaderContentType        = "Content-Type"
	RequestHeaderRateLimit          = "X-RateLimit-Limit"
	RequestHeaderRateLimitRemaining = "X-RateLimit-Remaining"
	RequestHeaderRateLimitWindow    = "X-RateLimit-Window"
	RequestHeaderRequestID          = "X-Request-ID"
	RequestHeaderForwardedFor       = "X-Forwarded-For"
	RequestHeaderRealIP             = "X-Real-IP"
)

const (
	ContentTypeJSON = "application/json"
)

const (
	ResponseErrorRequestLimitExceeded = "REQUEST LIMIT EXCEEDED"
	ResponseErrorPrepareShutdown      = "SERVER PREPARING TO SHUT DOWN"
)

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
	HealthStateUp         = "up"
	HealthStateDown       = "down"
)

const (
	ServerEnvDevelopment = "development"
	ServerEnvProduction  = "production"
)

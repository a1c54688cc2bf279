package handler

// Export for testing
type UserResponse = userResponse
type TokenResponse = tokenResponse
type ProductDetailResponse = productDetailResponse
type CompareResponse = compareResponse
type QuotaResponse = quotaResponse

var WriteServiceError = writeServiceError
var RetryAfterSeconds = retryAfterSeconds

package middle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/webshopd/nexipay/infra/opensearch"
)

// responseWriter wraps http.ResponseWriter to capture response data
type responseWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	startTime  time.Time
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		body:           &bytes.Buffer{},
		statusCode:     http.StatusOK,
		startTime:      time.Now(),
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// PaymentLoggingMiddleware creates a middleware for logging checkout requests/responses
func PaymentLoggingMiddleware(osLogger *opensearch.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip logging for non-checkout endpoints
			if !isCheckoutEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			requestID := uuid.New().String()
			r.Header.Set("X-Request-ID", requestID)

			gateway := extractGatewayFromURL(r.URL.Path)

			// Capture request body
			var requestBody []byte
			if r.Body != nil {
				requestBody, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			}

			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			paymentLog := opensearch.PaymentLog{
				Timestamp: rw.startTime,
				Gateway:   gateway,
				Method:    r.Method,
				Endpoint:  r.URL.Path,
				RequestID: requestID,
				Request: opensearch.RequestLog{
					Body: opensearch.SanitizeForLog(string(requestBody)),
				},
				Response: opensearch.ResponseLog{
					StatusCode:       rw.statusCode,
					Body:             opensearch.SanitizeForLog(rw.body.String()),
					ProcessingTimeMs: time.Since(rw.startTime).Milliseconds(),
				},
			}

			if paymentInfo := extractPaymentInfo(string(requestBody), rw.body.String()); paymentInfo != nil {
				paymentLog.PaymentInfo = *paymentInfo
			}

			if rw.statusCode >= 400 {
				if errorInfo := extractErrorInfo(rw.body.String()); errorInfo != nil {
					paymentLog.Error = *errorInfo
				}
			}

			// Log asynchronously to avoid blocking the response
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				_ = osLogger.LogPaymentRequest(ctx, paymentLog)
			}()
		})
	}
}

// isCheckoutEndpoint checks if the URL path is a checkout-related endpoint
func isCheckoutEndpoint(path string) bool {
	checkoutPaths := []string{
		"/v1/checkout",
		"/v1/webhooks",
	}

	for _, checkoutPath := range checkoutPaths {
		if strings.HasPrefix(path, checkoutPath) {
			return true
		}
	}

	return false
}

// extractGatewayFromURL extracts the gateway variant from the URL path,
// e.g. /v1/checkout/swish/payments -> swish
func extractGatewayFromURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	if len(segments) >= 3 {
		switch segments[1] {
		case "checkout", "webhooks":
			return segments[2]
		}
	}

	return ""
}

// extractPaymentInfo extracts payment information from request/response bodies
func extractPaymentInfo(requestBody, responseBody string) *opensearch.PaymentInfo {
	paymentInfo := &opensearch.PaymentInfo{}

	if requestBody != "" {
		var requestData map[string]any
		if err := json.Unmarshal([]byte(requestBody), &requestData); err == nil {
			if orderID, ok := requestData["orderId"].(string); ok {
				paymentInfo.OrderID = orderID
			}
			if amount, ok := requestData["amount"].(float64); ok {
				paymentInfo.Amount = int64(amount)
			}
			if currency, ok := requestData["currency"].(string); ok {
				paymentInfo.Currency = currency
			}
			if paymentID, ok := requestData["paymentId"].(string); ok {
				paymentInfo.PaymentID = paymentID
			}
		}
	}

	if responseBody != "" {
		var responseData map[string]any
		if err := json.Unmarshal([]byte(responseBody), &responseData); err == nil {
			if data, ok := responseData["data"].(map[string]any); ok {
				if paymentID, ok := data["paymentId"].(string); ok {
					paymentInfo.PaymentID = paymentID
				}
				if status, ok := data["result"].(string); ok {
					paymentInfo.Status = status
				}
			}
		}
	}

	if paymentInfo.PaymentID == "" && paymentInfo.OrderID == "" && paymentInfo.Amount == 0 {
		return nil
	}

	return paymentInfo
}

// extractErrorInfo extracts error information from response body
func extractErrorInfo(responseBody string) *opensearch.ErrorInfo {
	if responseBody == "" {
		return nil
	}

	var responseData map[string]any
	if err := json.Unmarshal([]byte(responseBody), &responseData); err != nil {
		return nil
	}

	errorInfo := &opensearch.ErrorInfo{}

	if errorMsg, ok := responseData["error"].(string); ok {
		errorInfo.Message = errorMsg
	} else if errorMsg, ok := responseData["message"].(string); ok {
		errorInfo.Message = errorMsg
	}

	if errorCode, ok := responseData["errorCode"].(string); ok {
		errorInfo.Code = errorCode
	} else if code, ok := responseData["code"].(string); ok {
		errorInfo.Code = code
	}

	if errorInfo.Code == "" && errorInfo.Message == "" {
		return nil
	}

	return errorInfo
}

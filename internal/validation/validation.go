// Package validation provides argument validation for chainlens tools and
// request middleware for the HTTP API.
package validation

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// Validator returns the shared validator with the chainlens tags registered:
//
//	addr    0x-prefixed values must be 20-byte hex addresses
//	txhash  0x-prefixed values must be 32-byte hex hashes
//
// Both tags accept the empty string and values without a 0x prefix, so
// non-EVM chains pass through untouched.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("addr", func(fl validator.FieldLevel) bool {
			return IsValidAddress(fl.Field().String())
		})
		_ = v.RegisterValidation("txhash", func(fl validator.FieldLevel) bool {
			return IsValidTxHash(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Struct validates s and converts the result into ValidationErrors.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		parts := strings.Fields(fe.Param())
		if len(parts) == 2 {
			return "is required when " + lowerFirst(parts[0]) + " is " + parts[1]
		}
		return "is required"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "addr":
		return "must be a valid address (0x + 40 hex chars)"
	case "txhash":
		return "must be a valid transaction hash (0x + 64 hex chars)"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// IsValidEthAddress checks if a string is a valid Ethereum address
func IsValidEthAddress(addr string) bool {
	return hasHexPrefix(addr) && common.IsHexAddress(addr)
}

// IsValidAddress accepts empty values, non-0x values, and well-formed
// 0x addresses.
func IsValidAddress(addr string) bool {
	if addr == "" || !hasHexPrefix(addr) {
		return true
	}
	return common.IsHexAddress(addr)
}

// IsValidTxHash accepts empty values, non-0x values, and 0x hashes that
// decode to exactly 32 bytes.
func IsValidTxHash(hash string) bool {
	if hash == "" || !hasHexPrefix(hash) {
		return true
	}
	b, err := hexutil.Decode(hash)
	return err == nil && len(b) == common.HashLength
}

// NormalizeAddress lowercases 0x-prefixed values; subgraph ids are stored
// lowercase. Anything else is returned trimmed.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if hasHexPrefix(addr) {
		return strings.ToLower(addr)
	}
	return addr
}

func hasHexPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + " " + e[0].Message
}

package api

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"cosmossdk.io/math"
	"github.com/gin-gonic/gin"

	dextypes "github.com/paw-chain/pawswap/x/dex/types"
)

// Validation constants
const (
	MaxAmountLength  = 39 // digits in 2^128
	MaxTokenIDLength = 128
	MaxUserIDLength  = 128
)

// Regular expressions for validation
var (
	// non-negative base-10 integer
	integerRegex = regexp.MustCompile(`^[0-9]+$`)

	// token ids: letters first, then letters, digits, "/", "-", "_", "."
	tokenIDRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9/_.-]*$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors holds multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	if !v.HasErrors() {
		return ""
	}
	var sb strings.Builder
	for i, err := range v.Errors {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return sb.String()
}

// err returns v as an error, or nil when nothing was recorded.
func (v *ValidationErrors) err() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

// SanitizeString removes potentially dangerous characters and HTML
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = html.EscapeString(input)
	return strings.TrimSpace(input)
}

// ParseAmount parses a non-negative integer amount string.
func ParseAmount(amount string) (math.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return math.Int{}, fmt.Errorf("amount is required")
	}
	if len(amount) > MaxAmountLength {
		return math.Int{}, fmt.Errorf("amount too long")
	}
	if !integerRegex.MatchString(amount) {
		return math.Int{}, fmt.Errorf("amount must be a non-negative integer")
	}
	v, ok := math.NewIntFromString(amount)
	if !ok {
		return math.Int{}, fmt.Errorf("invalid amount format")
	}
	if v.BigInt().BitLen() > dextypes.MaxAmountBitLen {
		return math.Int{}, fmt.Errorf("amount exceeds %d bits", dextypes.MaxAmountBitLen)
	}
	return v, nil
}

// ValidateTokenID validates a token identifier
func ValidateTokenID(id string) error {
	if id == "" {
		return fmt.Errorf("token id is required")
	}
	if len(id) > MaxTokenIDLength {
		return fmt.Errorf("token id too long")
	}
	if !tokenIDRegex.MatchString(id) {
		return fmt.Errorf("invalid token id format")
	}
	return nil
}

// ValidateUserID validates a user identifier
func ValidateUserID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("user id is required")
	}
	if len(id) > MaxUserIDLength {
		return fmt.Errorf("user id too long")
	}
	return nil
}

// ValidateLimit validates limit query parameter
func ValidateLimit(limitStr string, defaultLimit, maxLimit int) int {
	limit := defaultLimit
	if limitStr != "" && integerRegex.MatchString(limitStr) {
		if n, err := strconv.Atoi(limitStr); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// amounts collects parse failures by field while decoding a request.
type amounts struct {
	errs ValidationErrors
}

// required parses a mandatory amount.
func (a *amounts) required(field, s string) math.Int {
	v, err := ParseAmount(s)
	if err != nil {
		a.errs.Add(field, err.Error())
		return math.ZeroInt()
	}
	return v
}

// optional parses an amount that defaults to zero when absent.
func (a *amounts) optional(field, s string) math.Int {
	if strings.TrimSpace(s) == "" {
		return math.ZeroInt()
	}
	return a.required(field, s)
}

func (a *amounts) token(field, id string) {
	if err := ValidateTokenID(id); err != nil {
		a.errs.Add(field, err.Error())
	}
}

func (a *amounts) user(id string) {
	if err := ValidateUserID(id); err != nil {
		a.errs.Add("userId", err.Error())
	}
}

// =================== Path Parameters ===================

// parseIDParam reads a numeric path parameter such as :poolId.
func parseIDParam(c *gin.Context, name string) (uint64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		errs := &ValidationErrors{}
		errs.Add(name, fmt.Sprintf("%q is not a valid id", raw))
		return 0, errs
	}
	return id, nil
}

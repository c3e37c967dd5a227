package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	bttypes "github.com/mechx-labs/mechx/x/balancetracker/types"
	mptypes "github.com/mechx-labs/mechx/x/marketplace/types"
	sharederrors "github.com/mechx-labs/mechx/x/shared/errors"
)

// Validation constants
const (
	MaxRequestSize   = 1 << 20 // 1 MB
	MaxAddressLength = 100

	DefaultListLimit = 100
	MaxListLimit     = 1000
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

// ParseAddress validates a bech32 account address.
func ParseAddress(address string) (sdk.AccAddress, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, errors.New("address is required")
	}
	if len(address) > MaxAddressLength {
		return nil, errors.New("address too long")
	}
	addr, err := sdk.AccAddressFromBech32(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address format: %w", err)
	}
	return addr, nil
}

// ParseUint parses an optional non-negative integer query value.
func ParseUint(value string, defaultValue uint64) (uint64, error) {
	if value == "" {
		return defaultValue, nil
	}
	if strings.HasPrefix(value, "-") {
		return 0, errors.New("must not be negative")
	}
	return cast.ToUint64E(value)
}

// ValidateLimit clamps a list limit to [1, maxLimit], falling back to
// defaultLimit on empty or malformed input.
func ValidateLimit(limitStr string, defaultLimit, maxLimit int) int {
	limit, err := cast.ToIntE(limitStr)
	if limitStr == "" || err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// bindAddresses parses every named path parameter, collecting all failures.
func bindAddresses(c *gin.Context, params ...string) ([]sdk.AccAddress, bool) {
	var verrs ValidationErrors
	addrs := make([]sdk.AccAddress, len(params))
	for i, param := range params {
		addr, err := ParseAddress(c.Param(param))
		if err != nil {
			verrs.Add(param, err.Error())
			continue
		}
		addrs[i] = addr
	}
	if verrs.HasErrors() {
		badRequest(c, &verrs)
		return nil, false
	}
	return addrs, true
}

func bindVariant(c *gin.Context) (bttypes.Variant, bool) {
	v, err := bttypes.ParseVariant(c.Param("variant"))
	if err != nil {
		badRequest(c, err)
		return bttypes.Variant{}, false
	}
	return v, true
}

func bindRequestID(c *gin.Context) (mptypes.RequestID, bool) {
	id, err := mptypes.ParseRequestID(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return mptypes.RequestID{}, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error: err.Error(),
		Code:  CodeInvalidArgument,
	})
}

// respondError maps a keeper error to an HTTP status.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status, code := http.StatusBadRequest, CodeInvalidArgument
	switch {
	case errors.Is(err, mptypes.ErrUnknownMech), errors.Is(err, mptypes.ErrRequestIdNotFound):
		status, code = http.StatusNotFound, CodeNotFound
	default:
		// unregistered errors carry the undefined codespace
		if codespace, _, _ := errorsmod.ABCIInfo(err, false); codespace == errorsmod.UndefinedCodespace {
			status, code = http.StatusInternalServerError, CodeInternal
		}
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   err.Error(),
		Code:    code,
		Details: sharederrors.GetRecoverySuggestion(err),
	})
}

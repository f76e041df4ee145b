package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"library", errors.CodeLibraryLoadFailed, "fragments.smi is empty"},
		{"invalid param", errors.CodeInvalidParam, "SMILES must not be empty"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestError_Format(t *testing.T) {
	ae := errors.New(errors.CodeSMILESParseFailed, "parse failed").WithDetail("C1CC")
	assert.Equal(t, "[MOL_001] parse failed: C1CC", ae.Error())

	wrapped := errors.Wrap(fmt.Errorf("eof"), errors.CodeLibraryLoadFailed, "read")
	assert.Equal(t, "[MC_002] read: eof", wrapped.Error())
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "x"))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	inner := errors.New(errors.CodeFragmentInvalid, "bad fragment")
	outer := errors.Wrap(inner, errors.CodeUnknown, "adding context")
	assert.Equal(t, errors.CodeFragmentInvalid, outer.Code)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestWithDetail_DoesNotMutateReceiver(t *testing.T) {
	base := errors.New(errors.CodeInternal, "base")
	detailed := base.WithDetail("more")
	assert.Empty(t, base.Detail)
	assert.Equal(t, "more", detailed.Detail)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithDetail("x"))
	assert.Nil(t, nilErr.WithCause(fmt.Errorf("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_TraversesChain(t *testing.T) {
	inner := errors.New(errors.CodeReactionInvalid, "bad op")
	outer := fmt.Errorf("loading: %w", inner)
	assert.True(t, errors.IsCode(outer, errors.CodeReactionInvalid))
	assert.False(t, errors.IsCode(outer, errors.CodeInternal))
	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(fmt.Errorf("plain")))
	assert.Equal(t, errors.CodeRuleUnknown, errors.GetCode(errors.New(errors.CodeRuleUnknown, "x")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.NotFound("missing")))
	assert.False(t, errors.IsNotFound(errors.Internal("boom")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Codes
// ─────────────────────────────────────────────────────────────────────────────

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code     errors.ErrorCode
		expected int
	}{
		{errors.ErrCodeInternal, 500},
		{errors.ErrCodeBadRequest, 400},
		{errors.ErrCodeSMILESParseFailed, 400},
		{errors.ErrCodeValidation, 422},
		{errors.ErrorCode("NOPE"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, errors.HTTPStatusForCode(tt.code), tt.code)
	}
}

func TestClientServerClassification(t *testing.T) {
	assert.True(t, errors.IsClientError(errors.ErrCodeRuleUnknown))
	assert.False(t, errors.IsClientError(errors.ErrCodeInternal))
	assert.True(t, errors.IsServerError(errors.ErrCodeLibraryLoadFailed))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "COMMON", errors.ModuleForCode(errors.ErrCodeInternal))
	assert.Equal(t, "MC", errors.ModuleForCode(errors.ErrCodeProcessFailed))
	assert.Equal(t, "MOL", errors.ModuleForCode(errors.ErrCodeSMILESParseFailed))
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "invalid SMILES", errors.DefaultMessageForCode(errors.ErrCodeSMILESParseFailed))
	assert.Equal(t, "unknown error", errors.DefaultMessageForCode(errors.ErrorCode("NOPE")))
}

//Personal.AI order the ending

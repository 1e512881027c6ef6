package outcome_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/outcome"
)

func Test_Outcome_Pending(t *testing.T) {
	// act
	result := outcome.Pending[int]()

	// assert
	assert.True(t, result.IsPending(), "Should be pending")
	assert.False(t, result.IsSuccess(), "Should not be success")
	assert.False(t, result.IsFailure(), "Should not be failure")
	assert.False(t, result.IsTerminal(), "Pending should not be terminal")

	_, hasValue := result.Value()
	assert.False(t, hasValue, "Pending should not carry a value")

	_, hasCause := result.Cause()
	assert.False(t, hasCause, "Pending should not carry a cause")
}

func Test_Outcome_ZeroValue_IsPending(t *testing.T) {
	// act
	var result outcome.Outcome[string]

	// assert
	assert.True(t, result.IsPending(), "Zero value should be pending")
}

func Test_Outcome_Success(t *testing.T) {
	// act
	result := outcome.Success([]string{"first", "second"})

	// assert
	assert.True(t, result.IsSuccess(), "Should be success")
	assert.True(t, result.IsTerminal(), "Success should be terminal")

	value, hasValue := result.Value()
	assert.True(t, hasValue, "Success should carry its value")
	assert.Equal(t, []string{"first", "second"}, value, "Should carry the constructed value")

	_, hasCause := result.Cause()
	assert.False(t, hasCause, "Success should not carry a cause")
}

func Test_Outcome_Success_WithEmptyCollection(t *testing.T) {
	// act
	result := outcome.Success([]string{})

	// assert
	value, hasValue := result.Value()
	assert.True(t, hasValue, "An empty collection is still a success value")
	assert.Empty(t, value, "Should carry the empty collection")
}

func Test_Outcome_Failure(t *testing.T) {
	// arrange
	underlying := errors.New("connection refused")
	cause := outcome.NewErrorInfo("the catalog is unreachable", underlying)

	// act
	result := outcome.Failure[int](cause)

	// assert
	assert.True(t, result.IsFailure(), "Should be failure")
	assert.True(t, result.IsTerminal(), "Failure should be terminal")

	gotCause, hasCause := result.Cause()
	assert.True(t, hasCause, "Failure should carry its cause")
	assert.Equal(t, "the catalog is unreachable", gotCause.Message(), "Should carry the message")
	assert.Equal(t, underlying, gotCause.Cause(), "Should carry the underlying error")
}

func Test_Outcome_Failure_WithZeroCause_FallsBackToGenericCause(t *testing.T) {
	// act
	result := outcome.Failure[int](outcome.ErrorInfo{})

	// assert
	cause, hasCause := result.Cause()
	assert.True(t, hasCause, "Failure should always carry a cause")
	assert.NotEmpty(t, cause.Error(), "Fallback cause should have an error text")
}

func Test_Outcome_FailureFromError(t *testing.T) {
	// arrange
	underlying := errors.New("malformed payload")

	// act
	result := outcome.FailureFromError[int](underlying)

	// assert
	cause, hasCause := result.Cause()
	assert.True(t, hasCause, "Should carry a cause")
	assert.Equal(t, "malformed payload", cause.Message(), "Message should come from the error text")
	assert.ErrorIs(t, cause, underlying, "errors.Is should see through the ErrorInfo")
}

func Test_Outcome_String(t *testing.T) {
	assert.Equal(t, "Pending", outcome.Pending[int]().String())
	assert.Equal(t, "Success(42)", outcome.Success(42).String())
	assert.Equal(t, "Failure(boom)", outcome.FailureFromError[int](errors.New("boom")).String())
}

func Test_ErrorInfo_From_NilError(t *testing.T) {
	// act
	cause := outcome.ErrorInfoFrom(nil)

	// assert
	assert.NotEmpty(t, cause.Message(), "Nil error should yield a generic message")
	assert.Nil(t, cause.Cause(), "Nil error has no underlying cause")
}

func Test_ErrorInfo_Error_PrefersMessage(t *testing.T) {
	// arrange
	underlying := errors.New("technical detail")

	// act
	cause := outcome.NewErrorInfo("friendly text", underlying)

	// assert
	assert.Equal(t, "friendly text", cause.Error(), "Error text should prefer the message")
	assert.ErrorIs(t, cause, underlying, "Unwrap should expose the underlying cause")
}

func Test_ErrorInfo_Error_FallsBackToCause(t *testing.T) {
	// act
	cause := outcome.NewErrorInfo("", errors.New("technical detail"))

	// assert
	assert.Equal(t, "technical detail", cause.Error(), "Error text should fall back to the cause")
	assert.Empty(t, cause.Message(), "Message stays empty when none was provided")
}

package apierrors_test

import (
	"os"
	"sailclub/pkg/apierrors"
	"sailclub/pkg/translator"
	"testing"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMain(m *testing.M) {
	// Initialize minimal translator for tests
	translator.Translator = i18n.NewBundle(language.English)
	err := translator.Translator.AddMessages(language.English,
		&i18n.Message{ID: "test_key", Other: "Test message"},
		&i18n.Message{ID: "taskHelperMaxBelowCount", Other: "Cannot set helper maximum below the {{.Count}} signed-up helpers"},
	)
	if err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func TestCreateError_ReturnsJsonErr(t *testing.T) {
	err := apierrors.CreateError(400, "test_key", "en")
	assert.Equal(t, 400, err.ErrDetails.Code)
	assert.Equal(t, "Test message", err.ErrDetails.Message)
}

func TestGetTransErrorMsg_ReturnsTranslation(t *testing.T) {
	msg := apierrors.GetTransErrorMsg("test_key", "en")
	assert.Equal(t, "Test message", msg)
}

func TestGetTransErrorMsg_FallbackToKey(t *testing.T) {
	// No translation exists for "unknown_key"
	msg := apierrors.GetTransErrorMsg("unknown_key", "en")
	assert.Equal(t, "unknown_key", msg)
}

func TestJsonErr_ErrorMethod(t *testing.T) {
	err := apierrors.CreateError(500, "test_key", "en")
	assert.Equal(t, "Code: 500, Message: Test message", err.Error())
}

func TestCreateReasonError_TranslatesWithData(t *testing.T) {
	err := apierrors.CreateReasonError(409, "taskHelperMaxBelowCount", map[string]any{"Count": 2}, "fallback", "fr")
	assert.Equal(t, 409, err.ErrDetails.Code)
	assert.Equal(t, "taskHelperMaxBelowCount", err.ErrDetails.Reason)
	assert.Equal(t, "Cannot set helper maximum below the 2 signed-up helpers", err.ErrDetails.Message)
}

func TestCreateReasonError_FallsBackToMessage(t *testing.T) {
	err := apierrors.CreateReasonError(409, "noSuchRule", nil, "Task helper limit reached", "en")
	assert.Equal(t, "Task helper limit reached", err.ErrDetails.Message)
}

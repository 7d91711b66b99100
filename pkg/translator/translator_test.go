package translator_test

import (
	"os"
	"path/filepath"
	"testing"

	"sailclub/pkg/translator"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTranslator_LoadsMessages(t *testing.T) {
	dir := t.TempDir()

	enFile := filepath.Join(dir, "en.toml")
	content := []byte(`
taskNotFound = "Task not found"
hello = "Hello english"
`)
	require.NoError(t, os.WriteFile(enFile, content, 0644))

	translator.InitTranslator(translator.Config{
		TranslationFolder:  dir,
		SupportedLanguages: []string{translator.LanguageEn, translator.LanguageFr},
	})

	localizer := i18n.NewLocalizer(translator.Translator, translator.LanguageEn)

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello english", msg)
}

func TestInitTranslator_InvalidFolder(t *testing.T) {
	translator.InitTranslator(translator.Config{
		TranslationFolder:  "/path/does/not/exist",
		SupportedLanguages: []string{translator.LanguageEn},
	})
}

func TestTranslate_UsesTemplateDataAndFallsBackToEnglish(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.toml"), []byte(`
taskCaptainNeedsLicence = "Task captain needs licence: {{.Licence}}"
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fr.toml"), []byte(`
other = "Autre"
`), 0644))

	translator.InitTranslator(translator.Config{TranslationFolder: dir})

	msg, err := translator.Translate(translator.LanguageFr, "taskCaptainNeedsLicence", map[string]any{"Licence": "M"})
	require.NoError(t, err)
	assert.Equal(t, "Task captain needs licence: M", msg)

	_, err = translator.Translate(translator.LanguageEn, "missing", nil)
	assert.Error(t, err)
}

func TestShippedCatalogsLoad(t *testing.T) {
	translator.InitTranslator(translator.Config{TranslationFolder: "translation"})

	en, err := translator.Translate(translator.LanguageEn, "taskHelperLimitReached", nil)
	require.NoError(t, err)
	assert.Equal(t, "Task helper limit reached", en)

	fr, err := translator.Translate(translator.LanguageFr, "taskHelperLimitReached", nil)
	require.NoError(t, err)
	assert.NotEqual(t, en, fr)
}

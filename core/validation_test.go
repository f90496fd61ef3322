package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSource(t *testing.T) {
	tests := []struct {
		name    string
		src     *SourceDescriptor
		wantErr error
	}{
		{
			name: "valid unclassified source",
			src:  &SourceDescriptor{Name: "Statute", URL: "https://example.com/statute"},
		},
		{
			name: "valid classified source",
			src:  &SourceDescriptor{Name: "Doc", URL: "http://example.com/doc.pdf", Strategy: StrategyPDF},
		},
		{name: "nil source", src: nil, wantErr: ErrInvalidSource},
		{
			name:    "blank name",
			src:     &SourceDescriptor{Name: "  ", URL: "https://example.com"},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "relative url",
			src:     &SourceDescriptor{Name: "x", URL: "/just/a/path"},
			wantErr: ErrInvalidURL,
		},
		{
			name:    "ftp url",
			src:     &SourceDescriptor{Name: "x", URL: "ftp://example.com/file"},
			wantErr: ErrInvalidURL,
		},
		{
			name:    "unknown strategy",
			src:     &SourceDescriptor{Name: "x", URL: "https://example.com", Strategy: "docx"},
			wantErr: ErrInvalidStrategy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSource(tt.src)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidSource)
		})
	}
}

func TestValidateDocument(t *testing.T) {
	valid := func() *ExtractedDocument {
		return &ExtractedDocument{
			SourceURL: "https://example.com",
			FullText:  "Some text",
			Sections:  []ContentSection{{Title: "Section 1", Content: "Some text"}},
			ScrapedAt: time.Now().Add(-time.Minute),
		}
	}

	assert.NoError(t, ValidateDocument(valid()))

	doc := valid()
	doc.Sections = nil
	assert.NoError(t, ValidateDocument(doc), "zero sections are allowed")

	doc = valid()
	doc.Sections[0].Content = " \n"
	err := ValidateDocument(doc)
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.ErrorIs(t, err, ErrInvalidSection)

	doc = valid()
	doc.FullText = ""
	assert.ErrorIs(t, ValidateDocument(doc), ErrEmptyContent)

	doc = valid()
	doc.ScrapedAt = time.Now().Add(time.Hour)
	assert.ErrorIs(t, ValidateDocument(doc), ErrInvalidTimestamp)

	assert.ErrorIs(t, ValidateDocument(nil), ErrInvalidDocument)
}

func TestValidateReferenceRecords(t *testing.T) {
	assert.NoError(t, ValidateGlossaryTerm(&GlossaryTerm{Term: "NR", Explanation: "Not reported"}))
	assert.ErrorIs(t, ValidateGlossaryTerm(&GlossaryTerm{Term: "NR"}), ErrInvalidGlossaryTerm)
	assert.ErrorIs(t, ValidateGlossaryTerm(nil), ErrInvalidGlossaryTerm)

	assert.NoError(t, ValidateFeature(&FeatureRecord{Name: "retention", Description: "How long"}))
	assert.ErrorIs(t, ValidateFeature(&FeatureRecord{Description: "x"}), ErrInvalidFeature)
}

func TestValidateChatTurn(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)

	assert.NoError(t, ValidateChatTurn(&ChatTurn{Speaker: SpeakerTypeHuman, Text: "hi", Timestamp: validTime}))
	assert.ErrorIs(t, ValidateChatTurn(&ChatTurn{Speaker: SpeakerTypeAI, Timestamp: validTime}), ErrEmptyContent)
	assert.ErrorIs(t, ValidateChatTurn(&ChatTurn{Speaker: 99, Text: "x", Timestamp: validTime}), ErrInvalidSpeakerType)
	assert.ErrorIs(t, ValidateChatTurn(&ChatTurn{Speaker: SpeakerTypeAI, Text: "x", Timestamp: time.Now().Add(time.Hour)}), ErrInvalidTimestamp)
}

func TestValidateTask(t *testing.T) {
	assert.NoError(t, ValidateTask(&IngestionTask{Id: "t1", Status: TaskRunning}))
	assert.ErrorIs(t, ValidateTask(&IngestionTask{Status: TaskRunning}), ErrEmptyContent)
	assert.ErrorIs(t, ValidateTask(&IngestionTask{Id: "t1", Status: TaskNotFound}), ErrInvalidStatus)
	assert.ErrorIs(t, ValidateTask(nil), ErrInvalidTask)
}

package validation

import (
	"testing"

	"github.com/jonathan/job-portal/internal/apperr"
	"github.com/jonathan/job-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestStruct_JobInput(t *testing.T) {
	valid := func() types.JobInput {
		return types.JobInput{Title: "Go Developer", Location: "Remote", CategoryID: 2, Vacancy: 5, Skills: []string{"Go"}}
	}

	tests := []struct {
		name    string
		mutate  func(in *types.JobInput)
		wantMsg string
	}{
		{"valid", func(*types.JobInput) {}, ""},
		{"missing title", func(in *types.JobInput) { in.Title = "" }, "title - is required"},
		{"long title", func(in *types.JobInput) { in.Title = string(make([]byte, 51)) }, "title - must be at most 50"},
		{"missing location", func(in *types.JobInput) { in.Location = "" }, "location - is required"},
		{"experience too high", func(in *types.JobInput) { in.ExperienceRequired = intPtr(41) }, "experience_required - must be at most 40"},
		{"negative experience", func(in *types.JobInput) { in.ExperienceRequired = intPtr(-1) }, "experience_required - must be at least 0"},
		{"zero vacancy", func(in *types.JobInput) { in.Vacancy = 0 }, "vacancy - must be greater than 0"},
		{"missing category", func(in *types.JobInput) { in.CategoryID = 0 }, "category_id - is required"},
		{"blank skill", func(in *types.JobInput) { in.Skills = []string{""} }, "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := Struct(in)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestStrongPassword(t *testing.T) {
	base := types.RegisterCandidateRequest{Name: "Ada", Email: "ada@x.io"}

	for pw, ok := range map[string]bool{
		"Secret#123": true,
		"secret#123": false,
		"SECRET#123": false,
		"Secret1234": false,
		"Sh#1":       false,
		"Secret#12 ": false,
	} {
		req := base
		req.Password = pw
		if ok {
			assert.NoError(t, Struct(req), pw)
		} else {
			assert.Error(t, Struct(req), pw)
		}
	}
}

func TestAttachment(t *testing.T) {
	assert.NoError(t, Attachment("resume", "cv.PDF", 10, 100))
	assert.NoError(t, Attachment("resume", "cv.docx", 100, 100))
	assert.Error(t, Attachment("resume", "cv.exe", 10, 100))
	assert.Error(t, Attachment("resume", "cv.pdf", 101, 100))
	assert.Error(t, Attachment("resume", "", 1, 100))
}

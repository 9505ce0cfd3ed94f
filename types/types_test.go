package types

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCategoryTitle(t *testing.T) {
	assert.Equal(t, "Life Lessons", CategoryLifeLessons.Title())
	assert.Equal(t, "Finance", CategoryFinance.Title())
}

func TestScriptCaption(t *testing.T) {
	s := &Script{
		Lines:    []string{"एक", "दो"},
		Caption:  "caption line",
		Hashtags: []string{"#a", "#b"},
	}
	assert.Equal(t, "एक\nदो", s.Text())
	assert.Equal(t, "caption line\n\n#a #b", s.FullCaption())

	s.Hashtags = nil
	assert.Equal(t, "caption line", s.FullCaption())
}

func TestIsFatal(t *testing.T) {
	cfe := &ContentFormatError{Raw: "not json", Err: errors.New("invalid character")}

	assert.True(t, IsFatal(fmt.Errorf("stage 1: %w", cfe)))
	assert.True(t, IsFatal(fmt.Errorf("render: %w", ErrNoVisuals)))
	assert.True(t, IsFatal(ErrNoNarration))
	assert.False(t, IsFatal(errors.New("one clip failed")))
	assert.Contains(t, cfe.Error(), "not json")
}

func TestAcquireResultSkip(t *testing.T) {
	var r AcquireResult
	r.Skip("sunrise", errors.New("no results"))
	assert.Equal(t, []Skip{{Item: "sunrise", Reason: "no results"}}, r.Skipped)
}

func TestContentFormatErrorTruncatesByRune(t *testing.T) {
	raw := "x" + strings.Repeat("पैसा", 200)
	msg := (&ContentFormatError{Raw: raw, Err: errors.New("bad")}).Error()

	assert.True(t, utf8.ValidString(msg))
	assert.True(t, strings.HasSuffix(msg, "..."))
	assert.Equal(t, 300, utf8.RuneCountInString(strings.TrimSuffix(msg[strings.Index(msg, "raw content: ")+len("raw content: "):], "...")))
}

package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTokenizer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"particles stripped", "꿀벌은 월동 준비를 합니다", []string{"꿀벌", "월동", "준비"}},
		{"longest particle wins", "농가에서는 시설을 점검", []string{"농가", "시설", "점검"}},
		{"verb ending stripped", "보온 관리하는 방법", []string{"보온", "관리", "방법"}},
		{"short stem kept whole", "물을 줄 것", []string{"물을", "줄"}},
		{"single hangul syllable kept", "벼 이삭", []string{"벼", "이삭"}},
		{"numerals and symbols", "-2~5℃ 유지", []string{"2", "5", "유지"}},
		{"english lowercased and stop words dropped", "Control of the Varroa mite", []string{"control", "varroa", "mite"}},
		{"korean stop words dropped", "사과 및 배 등", []string{"사과", "배"}},
		{"empty", "   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultTokenizer.Tokenize(tt.text))
		})
	}
}

func TestStripSuffix(t *testing.T) {
	assert.Equal(t, "꿀벌", stripSuffix("꿀벌의"))
	assert.Equal(t, "병해충", stripSuffix("병해충으로는"))
	assert.Equal(t, "물이", stripSuffix("물이"), "one-rune stem is not produced")
	assert.Equal(t, "월동", stripSuffix("월동"))
}

func TestTokenizerFunc(t *testing.T) {
	tok := TokenizerFunc(func(text string) []string { return []string{text} })
	assert.Equal(t, []string{"x y"}, tok.Tokenize("x y"))
}

package noise

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNoise_TableOfContents(t *testing.T) {
	cases := []string{
		"목차\n1. 벼 ... 3",
		"### 목 차\n| 제1장 | 벼 |",
		"요약 ········ 2\n기상 ········ 3",
		"Table of Contents\nRice 3",
		"## Contents\nRice 3",
	}
	for _, text := range cases {
		assert.True(t, IsNoise(text), text)
	}
}

func TestIsNoise_ContentsWordInsideProse(t *testing.T) {
	cases := []string{
		"재배 품목 차이에 따라 수확 시기와 관리 방법이 달라지므로 주의가 필요합니다.",
		"사과 품목\n차량 이동 시 서리 피해를 확인하십시오.",
		"목차 정리는 다음 주에 안내합니다.",
	}
	for _, text := range cases {
		assert.False(t, IsNoise(text), text)
	}
}

func TestIsNoise_ChapterHeading(t *testing.T) {
	// "### Chapter 3" is a bare heading with no body.
	assert.True(t, IsNoise("### Chapter 3"))
	assert.True(t, IsNoise("### 제1장 벼"))
	assert.True(t, IsNoise("### 제 7장 축산"))
}

func TestIsNoise_KeepsBodies(t *testing.T) {
	cases := []string{
		"겨울철 꿀벌 관리: 봉군 내부 온도는 -2~5℃ 유지, 저밀 상태 점검",
		"기상 정보입니다.",
		"### 요약\n한파 특보 발효 시 시설하우스 보온 덮개를 이중으로 설치하고 난방기를 점검합니다.",
		"| 구분 | 내용 |\n|---|---|\n| 벼 | 못자리 설치 |",
	}
	for _, text := range cases {
		assert.False(t, IsNoise(text), text)
	}
}

func TestIsNoise_Empty(t *testing.T) {
	assert.True(t, IsNoise(""))
	assert.True(t, IsNoise(" \n\t"))
}

func TestClassifierStrictness(t *testing.T) {
	// 33 stripped runes, a chapter heading.
	chapter := "### 제3장 과수 재배 관리 요령과 병해충 종합 방제 계획"
	require.Equal(t, 33, StrippedLen(chapter))
	// 25 stripped runes, no chapter heading.
	short := "### 비교적 긴 요약이지만 사십자는 안되는 경우"
	require.Less(t, StrippedLen(short), 30)
	require.GreaterOrEqual(t, StrippedLen(short), 20)

	tests := []struct {
		strictness Strictness
		chapter    bool
		short      bool
	}{
		{Lenient, false, true},
		{Balanced, true, false},
		{Strict, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.strictness.String(), func(t *testing.T) {
			c := NewClassifier(tt.strictness)
			assert.Equal(t, tt.chapter, c.IsNoise(chapter))
			assert.Equal(t, tt.short, c.IsNoise(short))
		})
	}
}

func TestIsNoise_Deterministic(t *testing.T) {
	inputs := []string{"", "### Chapter 3", "목 차", strings.Repeat("벼 ", 40), "| a | b |"}
	for _, in := range inputs {
		assert.Equal(t, IsNoise(in), IsNoise(in))
	}
}

func TestStrippedLen(t *testing.T) {
	assert.Equal(t, 5, StrippedLen("| a |\n|---|\n| b-c |"))
	assert.Equal(t, 0, StrippedLen(" -|- \n"))
}

func TestParseStrictness(t *testing.T) {
	for _, s := range []Strictness{Lenient, Balanced, Strict} {
		got, err := ParseStrictness(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseStrictness("")
	require.NoError(t, err)
	assert.Equal(t, Strict, got)

	_, err = ParseStrictness("paranoid")
	assert.ErrorIs(t, err, ErrUnknownStrictness)
}

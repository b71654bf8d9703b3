package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTables_NoPipes(t *testing.T) {
	text := "한파 대비 -2~5℃ 유지"
	assert.Equal(t, text, NormalizeTables(text))
}

func TestNormalizeTables_RepairsBrokenTable(t *testing.T) {
	in := "요약 정보입니다.\n| 제1장 | 농 | |\n|| 업 | 1 |\n일반 텍스트입니다."
	want := "요약 정보입니다.\n| 제1장 | 농 |\n|---|---|\n| 업 | 1 |\n일반 텍스트입니다."
	assert.Equal(t, want, NormalizeTables(in))
}

func TestNormalizeTables_PadsAndCaps(t *testing.T) {
	in := "| a | b | c | d | e | f | g |\n| x |"
	want := "| a | b | c | d | e |\n|---|---|---|---|---|\n| x |  |  |  |  |"
	assert.Equal(t, want, NormalizeTables(in))
}

func TestNormalizeTables_KeepsSingleSeparator(t *testing.T) {
	in := "| 구분 | 내용 |\n|---|---|\n| 벼 | 못자리 |"
	assert.Equal(t, in, NormalizeTables(in))
}

func TestNormalizeTables_FlattensSingleColumn(t *testing.T) {
	in := "| 월동 관리 |\n| 한파 대비 ······ |"
	assert.Equal(t, "월동 관리\n한파 대비", NormalizeTables(in))
}

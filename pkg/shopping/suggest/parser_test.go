package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionsJSONArray(t *testing.T) {
	t.Run("plain array", func(t *testing.T) {
		got := parseQuestions(`["다른 색상도 있나요?", "배송은 얼마나 걸리나요?"]`)
		assert.Equal(t, []string{"다른 색상도 있나요?", "배송은 얼마나 걸리나요?"}, got)
	})

	t.Run("fenced array", func(t *testing.T) {
		response := "```json\n[\"다른 색상도 있나요?\", \"배송은 얼마나 걸리나요?\"]\n```"
		got := parseQuestions(response)
		assert.Len(t, got, 2)
	})

	t.Run("array with surrounding prose", func(t *testing.T) {
		response := `Here are the questions: ["다른 색상도 있나요?", "사이즈 교환이 가능한가요?"] hope that helps`
		got := parseQuestions(response)
		assert.Len(t, got, 2)
	})
}

func TestParseQuestionsSingleItemFallsThrough(t *testing.T) {
	// One question is not a usable suggestion set; no strategy may win
	// with a single match.
	assert.Empty(t, parseQuestions(`["다른 색상도 있나요?"]`))
	assert.Empty(t, parseQuestions(`추천: "이 코트 다른 색상도 있나요?"`))
	assert.Empty(t, parseQuestions("이 코트 다른 색상도 있나요?"))
	assert.Empty(t, parseQuestions("- 이 코트 다른 색상도 있나요?"))
}

func TestParseQuestionsQuotedFallback(t *testing.T) {
	response := `제안 질문: "이 코트 다른 색상도 있나요?" 그리고 "배송 기간은 얼마나 되나요?"`
	got := parseQuestions(response)
	assert.Equal(t, []string{"이 코트 다른 색상도 있나요?", "배송 기간은 얼마나 되나요?"}, got)
}

func TestParseQuestionsLineFallback(t *testing.T) {
	t.Run("question lines kept, short and non-question lines dropped", func(t *testing.T) {
		response := "이 코트 다른 색상도 있나요?\n배송 기간은 얼마나 되나요?\n짧은?\n설명만 있는 줄입니다 물음표 없이\n"
		got := parseQuestions(response)
		require.Len(t, got, 2)
		assert.Equal(t, "이 코트 다른 색상도 있나요?", got[0])
	})

	t.Run("surrounding quotes and commas stripped", func(t *testing.T) {
		response := "\"이 코트 다른 색상도 있나요?\",\n'배송 기간은 얼마나 되나요?',\n"
		got := parseQuestions(response)
		assert.Equal(t, []string{"이 코트 다른 색상도 있나요?", "배송 기간은 얼마나 되나요?"}, got)
	})

	t.Run("question mark mid-line does not count", func(t *testing.T) {
		response := "색상은요? 검정과 베이지가 있습니다\n사이즈는요? 제품 페이지를 보세요\n"
		assert.Empty(t, parseQuestions(response))
	})
}

func TestParseListLines(t *testing.T) {
	t.Run("only marker lines ending in a question mark", func(t *testing.T) {
		response := "- 비슷한 스타일 더 보여주시겠어요?\n* 가격대를 낮춰서 찾아볼까요?\n1. 인기 상품 추천해주세요\n"
		got := parseListLines(response)
		assert.Equal(t, []string{
			"비슷한 스타일 더 보여주시겠어요?",
			"가격대를 낮춰서 찾아볼까요?",
		}, got)
	})

	t.Run("statement list never accepted", func(t *testing.T) {
		response := "- 비슷한 스타일 더 보여주세요\n* 가격대 낮춰서 찾아주세요\n1. 인기 상품 추천해주세요\n"
		assert.Empty(t, parseListLines(response))
		assert.Empty(t, parseQuestions(response))
	})
}

func TestParseQuestionsCapAndDedup(t *testing.T) {
	got := parseQuestions(`["질문 하나입니다?", "질문 하나입니다?", "질문 둘입니다?", "질문 셋입니다?", "질문 넷입니다?", "질문 다섯입니다?"]`)
	assert.Len(t, got, 4)
	assert.Equal(t, "질문 하나입니다?", got[0])
}

func TestParseQuestionsNothingUsable(t *testing.T) {
	assert.Empty(t, parseQuestions("네 알겠습니다"))
	assert.Empty(t, parseQuestions(""))
}

package rephrase

import "strings"

type replacement struct {
	from, to string
}

// softeningTable is applied top to bottom. Order matters: later entries see
// the output of earlier ones.
var softeningTable = []replacement{
	{"完全是在開倒車", "可能未能達到理想效果"},
	{"把學生當成考試機器", "過於注重考試成績"},
	{"老師只能照本宣科", "老師教學自由度受限"},
	{"愚蠢的政策", "需要重新思考的政策"},
	{"限制AI的發展", "平衡科技發展與就業保障"},
	{"失業潦倒", "面臨就業轉型的挑戰"},
	{"立即停止", "建議重新評估"},
	{"只會扼殺創意", "可能會限制創意發展"},
	{"讓人又愛又恨", "帶來雙面影響"},
	{"只有科技巨頭賺錢", "需要確保技術發展成果能更廣泛地惠及社會"},
	{"完全違背教育的本質", "有違教育多元發展的理念"},
	{"!", "。"},
	{"！", "。"},
}

// Soften is the offline rephrasing: literal substring replacement of
// absolutist phrases plus exclamation marks turned into full stops. Text with
// no matches is returned unchanged.
func Soften(text string) string {
	result := text
	for _, r := range softeningTable {
		result = strings.ReplaceAll(result, r.from, r.to)
	}
	return result
}

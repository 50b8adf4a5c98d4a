package cache

import "banyan/internal/core/domain"

var seedPosts = []domain.Post{
	{
		ID:               "1",
		Content:          "新的課綱完全是在開倒車，把學生當成考試機器，老師只能照本宣科！",
		Username:         "王小明",
		CreatedAtDisplay: "2 小時前",
		AuthorID:         "seed-1",
	},
	{
		ID:               "2",
		Content:          "政府應該立即停止這種愚蠢的政策，限制AI的發展只會讓更多人失業潦倒！",
		Username:         "陳美玲",
		CreatedAtDisplay: "5 小時前",
		AuthorID:         "seed-2",
	},
	{
		ID:               "3",
		Content:          "AI 真的讓人又愛又恨，到頭來只有科技巨頭賺錢。",
		Username:         "林志豪",
		CreatedAtDisplay: "昨天",
		AuthorID:         "seed-3",
	},
	{
		ID:               "4",
		Content:          "統一考試只會扼殺創意，完全違背教育的本質！",
		Username:         "張雅婷",
		CreatedAtDisplay: "3 天前",
		AuthorID:         "seed-4",
	},
}

// SeedPosts returns a fresh copy of the first-run example posts.
func SeedPosts() []domain.Post {
	out := make([]domain.Post, len(seedPosts))
	copy(out, seedPosts)
	return out
}

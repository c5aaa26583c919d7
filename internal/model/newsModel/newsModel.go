package newsModel

type RawNewsResponse struct {
	Status   string       `json:"status"`
	Articles []RawArticle `json:"articles"`
}

type RawArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"publishedAt"`
	Url         string `json:"url"`
}

type Article struct {
	Title       string
	Description string
	PublishedAt string
	Url         string
}

// ArticleWithSummary carries the AI summary alongside the article. Summary
// degrades to a fixed fallback string when the summarizer is unavailable.
type ArticleWithSummary struct {
	Article
	Summary string
}

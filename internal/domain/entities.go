package domain

import "time"

// DateFormat is the calendar-day partition key format used across storage and APIs.
const DateFormat = "2006-01-02"

// ChatMessage is a single recorded Discord message. Immutable once recorded.
type ChatMessage struct {
	Author      string    `json:"author"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Reactions   int       `json:"reactions"`
	Attachments bool      `json:"attachments"`
}

// DailyLog holds one calendar day of chat activity partitioned by channel name.
// Messages within a channel keep arrival order.
type DailyLog struct {
	Date          string                   `json:"date"`
	Channels      map[string][]ChatMessage `json:"channels"`
	TotalMessages int                      `json:"totalMessages"`
}

// NewDailyLog returns an empty log for the given date.
func NewDailyLog(date string) DailyLog {
	return DailyLog{Date: date, Channels: make(map[string][]ChatMessage)}
}

// DailySummaryRecord is the persisted result of one day's summary pipeline run.
// Created once per day, never mutated afterwards.
type DailySummaryRecord struct {
	Date             string                   `json:"date"`
	OverallSummary   string                   `json:"overall_summary"`
	ChannelSummaries map[string]string        `json:"channel_summaries"`
	TotalMessages    int                      `json:"total_messages"`
	RawMessages      map[string][]ChatMessage `json:"raw_messages"`
}

// Article is a persona-written newsletter article.
type Article struct {
	Author         string `json:"author"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Topic          string `json:"topic"`
	DiscordContext string `json:"discord_context,omitempty"`
	ArticleDate    string `json:"article_date"`
	Published      bool   `json:"published"`
}

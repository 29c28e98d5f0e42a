package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// TalkPage is the locally persisted discussion page for one article. The
// revision id records which remote revision the stored topic tree mirrors.
type TalkPage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Key          string `gorm:"uniqueIndex;not null" json:"key"`
	RevisionID   int64  `json:"revision_id"`
	LanguageCode string `json:"language_code"`
	DisplayTitle string `json:"display_title"`

	Topics []TalkPageTopic `gorm:"foreignKey:PageID" json:"topics"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TalkPageTopic is one discussion thread. TextSha identifies the topic's own
// content across fetches; RepliesSha digests the entire reply subtree so an
// untouched thread can be skipped without walking its replies.
type TalkPageTopic struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	PageID uint `gorm:"index;not null" json:"page_id"`

	Title        string `json:"title"`
	SectionIndex int    `json:"section_index"`
	Sort         int    `json:"sort"`
	TextSha      string `gorm:"index" json:"text_sha"`
	RepliesSha   string `json:"replies_sha"`

	Replies []TalkPageReply `gorm:"foreignKey:TopicID" json:"replies"`
}

// TalkPageReply is one comment in a thread. Its identity across fetches is
// the content hash; text and depth never change in place, a content change
// is a different logical reply.
type TalkPageReply struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	TopicID uint `gorm:"index;not null" json:"topic_id"`

	Sha   string `gorm:"index" json:"sha"`
	Text  string `json:"text"`
	Depth int16  `json:"depth"`
	Sort  int    `json:"sort"`
}

// PageKey derives the stable identity key for a talk page from its project
// host, language code and title.
func PageKey(host, languageCode, title string) string {
	t := norm.NFC.String(strings.TrimSpace(title))
	t = strings.ReplaceAll(t, " ", "_")
	return fmt.Sprintf("%s/%s/%s", strings.ToLower(strings.TrimSpace(host)), languageCode, t)
}

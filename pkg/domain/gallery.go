package domain

import "time"

// MaxGalleryItems はギャラリーに保持する最大件数です。
const MaxGalleryItems = 6

// GalleryItem は保存済みの生成結果です。作成後は変更されません。
type GalleryItem struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Theme     string    `json:"theme"`
	Vibe      string    `json:"vibe"`
	Pose      string    `json:"pose"`
	CreatedAt time.Time `json:"createdAt"`
}

package scrapecreators

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/komenta/internal/core/domain"
	"github.com/custodia-labs/komenta/internal/core/ports/driven"
)

// The provider is inconsistent about field names across endpoints and over
// time: comment arrays arrive as "comments", "data" or "items", cursors as
// "cursor" or "next_cursor" (number or string), continuation flags as
// "has_more" or "hasMore". Normalization checks the aliases in a fixed
// priority order so the rest of the codebase never sees the raw shapes.

// flexValue decodes a JSON value that may be a number, a string, or null
// into its string form. Null and absent both normalize to "".
type flexValue string

func (f *flexValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexValue(n.String())
	return nil
}

func (f flexValue) String() string { return string(f) }

// Int64 returns the numeric value, or 0 when the value is empty or not
// a number.
func (f flexValue) Int64() int64 {
	var n int64
	if _, err := fmt.Sscanf(string(f), "%d", &n); err != nil {
		return 0
	}
	return n
}

// pageEnvelope captures the alias fields of any paginated response.
type pageEnvelope struct {
	Comments []json.RawMessage `json:"comments"`
	Data     []json.RawMessage `json:"data"`
	Items    []json.RawMessage `json:"items"`

	Cursor     flexValue `json:"cursor"`
	NextCursor flexValue `json:"next_cursor"`

	HasMore      *bool `json:"has_more"`
	HasMoreCamel *bool `json:"hasMore"`
}

// itemList returns the first populated item alias, in priority order.
func (p *pageEnvelope) itemList() []json.RawMessage {
	switch {
	case p.Comments != nil:
		return p.Comments
	case p.Data != nil:
		return p.Data
	default:
		return p.Items
	}
}

// cursor returns the first populated cursor alias.
func (p *pageEnvelope) cursor() string {
	if s := p.Cursor.String(); s != "" {
		return s
	}
	return p.NextCursor.String()
}

// hasMore returns the first populated continuation alias.
func (p *pageEnvelope) hasMore() bool {
	if p.HasMore != nil {
		return *p.HasMore
	}
	if p.HasMoreCamel != nil {
		return *p.HasMoreCamel
	}
	return false
}

// rawComment mirrors the provider's TikTok comment shape.
type rawComment struct {
	CID  flexValue `json:"cid"`
	ID   flexValue `json:"id"`
	Text string    `json:"text"`
	User struct {
		UniqueID string    `json:"unique_id"`
		UID      flexValue `json:"uid"`
		ID       flexValue `json:"id"`
		Nickname string    `json:"nickname"`
		Avatar   struct {
			URLList []string `json:"url_list"`
		} `json:"avatar_thumb"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user"`
	DiggCount  *int      `json:"digg_count"`
	LikeCount  *int      `json:"like_count"`
	CreateTime flexValue `json:"create_time"`
}

// normalizeComment converts one raw comment, tolerating absent fields.
func normalizeComment(raw json.RawMessage) (domain.Comment, bool) {
	var rc rawComment
	if err := json.Unmarshal(raw, &rc); err != nil {
		return domain.Comment{}, false
	}

	id := rc.CID.String()
	if id == "" {
		id = rc.ID.String()
	}

	avatar := rc.User.AvatarURL
	if avatar == "" && len(rc.User.Avatar.URLList) > 0 {
		avatar = rc.User.Avatar.URLList[0]
	}

	likes := 0
	switch {
	case rc.DiggCount != nil:
		likes = *rc.DiggCount
	case rc.LikeCount != nil:
		likes = *rc.LikeCount
	}
	if likes < 0 {
		likes = 0
	}

	authorID := rc.User.UID.String()
	if authorID == "" {
		authorID = rc.User.ID.String()
	}

	return domain.Comment{
		ID:   id,
		Text: rc.Text,
		Author: domain.Author{
			Handle:      rc.User.UniqueID,
			DisplayName: rc.User.Nickname,
			AvatarURL:   avatar,
			ID:          authorID,
		},
		LikeCount: likes,
		CreatedAt: rc.CreateTime.Int64(),
		Platform:  "tiktok",
	}, true
}

// normalizeCommentPage parses a comment page body.
func normalizeCommentPage(body []byte) (*driven.CommentPage, error) {
	var env pageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, ErrMalformedPayload
	}

	items := env.itemList()
	page := &driven.CommentPage{
		Comments:   make([]domain.Comment, 0, len(items)),
		NextCursor: env.cursor(),
		HasMore:    env.hasMore(),
	}
	for _, raw := range items {
		if c, ok := normalizeComment(raw); ok {
			page.Comments = append(page.Comments, c)
		}
	}
	return page, nil
}

// rawVideo mirrors the provider's aweme (video) shape.
type rawVideo struct {
	AwemeID flexValue `json:"aweme_id"`
	Desc    string    `json:"desc"`
	Author  struct {
		UniqueID string `json:"unique_id"`
	} `json:"author"`
}

func (rv *rawVideo) toVideo() domain.Video {
	handle := rv.Author.UniqueID
	if handle == "" {
		handle = "unknown"
	}
	id := rv.AwemeID.String()
	return domain.Video{
		ID:           id,
		AuthorHandle: handle,
		URL:          domain.VideoURL(handle, id),
		Description:  rv.Desc,
	}
}

// normalizeVideoList parses a profile video listing body.
func normalizeVideoList(body []byte) ([]domain.Video, error) {
	var env struct {
		AwemeList []rawVideo `json:"aweme_list"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, ErrMalformedPayload
	}

	videos := make([]domain.Video, 0, len(env.AwemeList))
	for i := range env.AwemeList {
		v := env.AwemeList[i].toVideo()
		if v.ID != "" {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// normalizeSearchPage parses a keyword search result body. Search results
// wrap each video in a search_item with an aweme_info payload; some
// responses use a bare aweme_list instead.
func normalizeSearchPage(body []byte) (*driven.VideoPage, error) {
	var env struct {
		SearchItems []struct {
			AwemeInfo *rawVideo `json:"aweme_info"`
		} `json:"search_item_list"`
		AwemeList []rawVideo `json:"aweme_list"`

		Cursor     flexValue `json:"cursor"`
		NextCursor flexValue `json:"next_cursor"`
		HasMore    *bool     `json:"has_more"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, ErrMalformedPayload
	}

	page := &driven.VideoPage{NextCursor: env.Cursor.String()}
	if page.NextCursor == "" {
		page.NextCursor = env.NextCursor.String()
	}
	if env.HasMore != nil {
		page.HasMore = *env.HasMore
	}

	for _, item := range env.SearchItems {
		if item.AwemeInfo == nil {
			continue
		}
		if v := item.AwemeInfo.toVideo(); v.ID != "" {
			page.Videos = append(page.Videos, v)
		}
	}
	if len(page.Videos) == 0 {
		for i := range env.AwemeList {
			if v := env.AwemeList[i].toVideo(); v.ID != "" {
				page.Videos = append(page.Videos, v)
			}
		}
	}
	return page, nil
}

// normalizeVideoInfo parses a video info body into engagement stats.
func normalizeVideoInfo(body []byte) (*domain.VideoStats, error) {
	var env struct {
		ItemInfo struct {
			ItemStruct struct {
				Stats struct {
					DiggCount    *int      `json:"diggCount"`
					ShareCount   *int      `json:"shareCount"`
					CollectCount flexValue `json:"collectCount"`
					PlayCount    *int      `json:"playCount"`
				} `json:"stats"`
				CreateTime flexValue `json:"createTime"`
			} `json:"itemStruct"`
		} `json:"itemInfo"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, ErrMalformedPayload
	}

	stats := env.ItemInfo.ItemStruct.Stats
	vs := &domain.VideoStats{
		Saves:     int(stats.CollectCount.Int64()),
		CreatedAt: env.ItemInfo.ItemStruct.CreateTime.Int64(),
	}
	if stats.DiggCount != nil {
		vs.Likes = *stats.DiggCount
	}
	if stats.ShareCount != nil {
		vs.Shares = *stats.ShareCount
	}
	if stats.PlayCount != nil {
		vs.Views = *stats.PlayCount
	}
	return vs, nil
}

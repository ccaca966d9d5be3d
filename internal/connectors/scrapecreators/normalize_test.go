package scrapecreators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCommentPage_ProviderShape(t *testing.T) {
	body := []byte(`{
		"comments": [
			{
				"cid": "7001",
				"text": "love this",
				"user": {
					"unique_id": "alice",
					"nickname": "Alice",
					"avatar_thumb": {"url_list": ["https://cdn.example/alice.jpg"]}
				},
				"digg_count": 12,
				"create_time": 1700000000
			}
		],
		"cursor": 20,
		"has_more": true
	}`)

	page, err := normalizeCommentPage(body)
	require.NoError(t, err)

	require.Len(t, page.Comments, 1)
	c := page.Comments[0]
	assert.Equal(t, "7001", c.ID)
	assert.Equal(t, "love this", c.Text)
	assert.Equal(t, "alice", c.Author.Handle)
	assert.Equal(t, "Alice", c.Author.DisplayName)
	assert.Equal(t, "https://cdn.example/alice.jpg", c.Author.AvatarURL)
	assert.Equal(t, 12, c.LikeCount)
	assert.Equal(t, int64(1700000000), c.CreatedAt)
	assert.Equal(t, "tiktok", c.Platform)

	// Numeric cursor normalizes to its string form.
	assert.Equal(t, "20", page.NextCursor)
	assert.True(t, page.HasMore)
}

func TestNormalizeCommentPage_AliasPriority(t *testing.T) {
	// When multiple aliases are present, "comments" wins over "data",
	// "cursor" over "next_cursor", and "has_more" over "hasMore".
	body := []byte(`{
		"comments": [{"cid": "1", "text": "from comments"}],
		"data": [{"cid": "2", "text": "from data"}],
		"cursor": "c-primary",
		"next_cursor": "c-secondary",
		"has_more": false,
		"hasMore": true
	}`)

	page, err := normalizeCommentPage(body)
	require.NoError(t, err)

	require.Len(t, page.Comments, 1)
	assert.Equal(t, "from comments", page.Comments[0].Text)
	assert.Equal(t, "c-primary", page.NextCursor)
	assert.False(t, page.HasMore)
}

func TestNormalizeCommentPage_FallbackAliases(t *testing.T) {
	body := []byte(`{
		"data": [{"id": 42, "text": "alias id", "user": {"id": 9}, "like_count": 3}],
		"next_cursor": "40",
		"hasMore": true
	}`)

	page, err := normalizeCommentPage(body)
	require.NoError(t, err)

	require.Len(t, page.Comments, 1)
	c := page.Comments[0]
	assert.Equal(t, "42", c.ID)
	assert.Equal(t, "9", c.Author.ID)
	assert.Equal(t, 3, c.LikeCount)
	assert.Equal(t, "40", page.NextCursor)
	assert.True(t, page.HasMore)
}

func TestNormalizeCommentPage_EmptyAndMalformed(t *testing.T) {
	page, err := normalizeCommentPage([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, page.Comments)
	assert.False(t, page.HasMore)

	_, err = normalizeCommentPage([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestNormalizeComment_NegativeLikesClamped(t *testing.T) {
	body := []byte(`{"comments": [{"cid": "1", "text": "x", "digg_count": -5}]}`)

	page, err := normalizeCommentPage(body)
	require.NoError(t, err)
	require.Len(t, page.Comments, 1)
	assert.Zero(t, page.Comments[0].LikeCount)
}

func TestNormalizeVideoList(t *testing.T) {
	body := []byte(`{
		"aweme_list": [
			{"aweme_id": "111", "desc": "first", "author": {"unique_id": "bob"}},
			{"aweme_id": 222, "desc": "numeric id"},
			{"desc": "no id, dropped"}
		]
	}`)

	videos, err := normalizeVideoList(body)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, "111", videos[0].ID)
	assert.Equal(t, "bob", videos[0].AuthorHandle)
	assert.Equal(t, "https://www.tiktok.com/@bob/video/111", videos[0].URL)

	// Missing author handle falls back to a placeholder so the URL is
	// still well formed.
	assert.Equal(t, "222", videos[1].ID)
	assert.Equal(t, "unknown", videos[1].AuthorHandle)
}

func TestNormalizeSearchPage_SearchItemShape(t *testing.T) {
	body := []byte(`{
		"search_item_list": [
			{"aweme_info": {"aweme_id": "301", "author": {"unique_id": "carol"}}},
			{"aweme_info": null}
		],
		"cursor": "30",
		"has_more": true
	}`)

	page, err := normalizeSearchPage(body)
	require.NoError(t, err)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, "301", page.Videos[0].ID)
	assert.Equal(t, "30", page.NextCursor)
	assert.True(t, page.HasMore)
}

func TestNormalizeSearchPage_AwemeListFallback(t *testing.T) {
	body := []byte(`{
		"aweme_list": [{"aweme_id": "400", "author": {"unique_id": "dave"}}],
		"has_more": false
	}`)

	page, err := normalizeSearchPage(body)
	require.NoError(t, err)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, "400", page.Videos[0].ID)
	assert.False(t, page.HasMore)
}

func TestNormalizeVideoInfo(t *testing.T) {
	body := []byte(`{
		"itemInfo": {
			"itemStruct": {
				"stats": {
					"diggCount": 1500,
					"shareCount": 40,
					"collectCount": "77",
					"playCount": 90000
				},
				"createTime": "1699999999"
			}
		}
	}`)

	stats, err := normalizeVideoInfo(body)
	require.NoError(t, err)

	assert.Equal(t, 1500, stats.Likes)
	assert.Equal(t, 40, stats.Shares)
	assert.Equal(t, 77, stats.Saves)
	assert.Equal(t, 90000, stats.Views)
	assert.Equal(t, int64(1699999999), stats.CreatedAt)
}

package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/browse"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
)

func TestKeyboardFor_RootLayout(t *testing.T) {
	t.Parallel()

	v := browse.View{
		Path: "Home",
		Items: []browse.Item{
			{ID: "f1", Name: "M17 Cardiology", Icon: "📁", Kind: models.KindFolder},
			{ID: "d1", Name: "syllabus.pdf", Icon: "📕", Kind: models.KindFile,
				URL: "https://drive.google.com/file/d/d1/view"},
		},
	}

	kb := keyboardFor(v)
	require.Len(t, kb.InlineKeyboard, 3, "nav row plus one row per item")

	nav := kb.InlineKeyboard[0]
	require.Len(t, nav, 1, "no Back at the root")
	assert.Equal(t, "🏠 Home", nav[0].Text)
	require.NotNil(t, nav[0].CallbackData)
	assert.Equal(t, "HOME", *nav[0].CallbackData)

	folderRow := kb.InlineKeyboard[1]
	require.Len(t, folderRow, 1)
	assert.Equal(t, "📁 M17 Cardiology", folderRow[0].Text)
	require.NotNil(t, folderRow[0].CallbackData)
	assert.Equal(t, "OPEN:f1", *folderRow[0].CallbackData)
	assert.Nil(t, folderRow[0].URL)

	fileRow := kb.InlineKeyboard[2]
	require.Len(t, fileRow, 1)
	assert.Equal(t, "📕 syllabus.pdf", fileRow[0].Text)
	require.NotNil(t, fileRow[0].URL)
	assert.Equal(t, "https://drive.google.com/file/d/d1/view", *fileRow[0].URL)
	assert.Nil(t, fileRow[0].CallbackData, "files must not round-trip through the bot")
}

func TestKeyboardFor_DeepFolderShowsBack(t *testing.T) {
	t.Parallel()

	kb := keyboardFor(browse.View{Path: "Home › M17", CanBack: true})
	require.NotEmpty(t, kb.InlineKeyboard)
	nav := kb.InlineKeyboard[0]
	require.Len(t, nav, 2)
	assert.Equal(t, "⬅️ Back", nav[0].Text)
	assert.Equal(t, "BACK", *nav[0].CallbackData)
	assert.Equal(t, "🏠 Home", nav[1].Text)
}

func TestKeyboardFor_PagingRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hasPrev bool
		hasNext bool
		want    []string
	}{
		{"middle page", true, true, []string{"PREV", "NEXT"}},
		{"first page", false, true, []string{"NEXT"}},
		{"last page", true, false, []string{"PREV"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kb := keyboardFor(browse.View{HasPrev: tt.hasPrev, HasNext: tt.hasNext})
			require.Len(t, kb.InlineKeyboard, 2, "nav row plus paging row")
			var got []string
			for _, btn := range kb.InlineKeyboard[1] {
				got = append(got, *btn.CallbackData)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyboardFor_SinglePageOmitsPagingRow(t *testing.T) {
	t.Parallel()

	kb := keyboardFor(browse.View{
		Items: []browse.Item{{ID: "d1", Name: "a.pdf", Icon: "📕", Kind: models.KindFile, URL: "u"}},
	})
	require.Len(t, kb.InlineKeyboard, 2, "nav row plus the item row, no paging")
}

func TestKeyboardFor_FolderAliasOpensLikeAFolder(t *testing.T) {
	t.Parallel()

	kb := keyboardFor(browse.View{
		Items: []browse.Item{{ID: "sc1", Name: "M20 mirror", Icon: "📁", Kind: models.KindFolderAlias}},
	})
	row := kb.InlineKeyboard[1]
	require.NotNil(t, row[0].CallbackData)
	assert.Equal(t, "OPEN:sc1", *row[0].CallbackData,
		"the callback carries the alias's own id; resolution happened at render time")
}

func TestViewMessage(t *testing.T) {
	t.Parallel()

	msg := viewMessage(5, browse.View{Path: "Home › M17 Cardiology"})
	assert.Equal(t, int64(5), msg.ChatID)
	assert.Equal(t, "📂 Home › M17 Cardiology", msg.Text)
	assert.True(t, msg.DisableWebPagePreview)
	_, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.True(t, ok, "the keyboard rides along as reply markup")
}

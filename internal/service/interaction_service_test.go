package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sublimes-drive/drive-core/internal/model"
)

const testAgentID = "agent-freya"

func setupInteractionDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Post{},
		&model.ItemLike{}, &model.ItemSave{}, &model.ItemShare{}, &model.ItemComment{},
		&model.DispatchEvent{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	u := model.User{ID: id, Username: id, Email: id + "@example.com", Password: "p"}
	require.NoError(t, db.Create(&u).Error)
}

func TestToggleLikeConcreteScenario(t *testing.T) {
	db := setupInteractionDB(t)
	seedUser(t, db, "u1")
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	st, err := svc.ToggleLike(ctx, model.ItemTypePost, "p1", "u1")
	require.NoError(t, err)
	require.True(t, st.Liked)
	require.EqualValues(t, 1, st.LikeCount)

	st, err = svc.ToggleLike(ctx, model.ItemTypePost, "p1", "u1")
	require.NoError(t, err)
	require.False(t, st.Liked)
	require.EqualValues(t, 0, st.LikeCount)
}

func TestToggleLikeIdempotence(t *testing.T) {
	db := setupInteractionDB(t)
	seedUser(t, db, "u1")
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	// 奇数次翻转后状态与起点相反，偶数次回到起点
	var last *LikeState
	for i := 0; i < 5; i++ {
		var err error
		last, err = svc.ToggleLike(ctx, model.ItemTypePost, "p1", "u1")
		require.NoError(t, err)
	}
	require.True(t, last.Liked)
	require.EqualValues(t, 1, last.LikeCount)

	last, err := svc.ToggleLike(ctx, model.ItemTypePost, "p1", "u1")
	require.NoError(t, err)
	require.False(t, last.Liked)
	require.EqualValues(t, 0, last.LikeCount)
}

func TestLikeCountConsistency(t *testing.T) {
	db := setupInteractionDB(t)
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	const n, m = 10, 4
	for i := 0; i < n; i++ {
		uid := fmt.Sprintf("u%d", i)
		seedUser(t, db, uid)
		_, err := svc.ToggleLike(ctx, model.ItemTypePost, "p1", uid)
		require.NoError(t, err)
	}
	for i := 0; i < m; i++ {
		_, err := svc.ToggleLike(ctx, model.ItemTypePost, "p1", fmt.Sprintf("u%d", i))
		require.NoError(t, err)
	}

	counts, err := svc.GetCounts(ctx, model.ItemTypePost, "p1")
	require.NoError(t, err)
	require.EqualValues(t, n-m, counts.LikeCount)
}

func TestToggleRequiresAuth(t *testing.T) {
	db := setupInteractionDB(t)
	svc := NewInteractionService(db, testAgentID)

	_, err := svc.ToggleLike(context.Background(), model.ItemTypePost, "p1", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.ToggleSave(context.Background(), model.ItemTypePost, "p1", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestInvalidItemType(t *testing.T) {
	db := setupInteractionDB(t)
	svc := NewInteractionService(db, testAgentID)

	_, err := svc.ToggleLike(context.Background(), model.ItemType("bogus"), "p1", "u1")
	require.ErrorIs(t, err, ErrInvalidItemType)
}

func TestTrackShareAppendOnly(t *testing.T) {
	db := setupInteractionDB(t)
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	uid := "u1"
	seedUser(t, db, uid)
	// 匿名也可以打点
	cnt, err := svc.TrackShare(ctx, model.ItemTypeListing, "l1", nil, model.ShareWhatsApp)
	require.NoError(t, err)
	require.EqualValues(t, 1, cnt)

	cnt, err = svc.TrackShare(ctx, model.ItemTypeListing, "l1", &uid, model.ShareLink)
	require.NoError(t, err)
	require.EqualValues(t, 2, cnt)

	// 同一用户重复分享继续累加
	cnt, err = svc.TrackShare(ctx, model.ItemTypeListing, "l1", &uid, model.ShareLink)
	require.NoError(t, err)
	require.EqualValues(t, 3, cnt)
}

func TestThreadedCommentScenario(t *testing.T) {
	db := setupInteractionDB(t)
	seedUser(t, db, "u1")
	seedUser(t, db, "u2")
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	c1, total, err := svc.AddComment(ctx, model.ItemTypePost, "p1", "u1", "Hello", nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	c2, total, err := svc.AddComment(ctx, model.ItemTypePost, "p1", "u2", "Reply", &c1.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.NotNil(t, c2.ParentCommentID)
	require.Equal(t, c1.ID, *c2.ParentCommentID)
}

func TestCommentParentMustMatchItem(t *testing.T) {
	db := setupInteractionDB(t)
	seedUser(t, db, "u1")
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	other, _, err := svc.AddComment(ctx, model.ItemTypeEvent, "e1", "u1", "on another item", nil)
	require.NoError(t, err)

	_, _, err = svc.AddComment(ctx, model.ItemTypePost, "p1", "u1", "bad reply", &other.ID)
	require.ErrorIs(t, err, ErrInvalidParent)

	missing := "no-such-comment"
	_, _, err = svc.AddComment(ctx, model.ItemTypePost, "p1", "u1", "orphan reply", &missing)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCommentValidation(t *testing.T) {
	db := setupInteractionDB(t)
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	_, _, err := svc.AddComment(ctx, model.ItemTypePost, "p1", "", "hi", nil)
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, _, err = svc.AddComment(ctx, model.ItemTypePost, "p1", "u1", "   ", nil)
	require.ErrorIs(t, err, ErrEmptyContent)
}

func TestDeleteCommentOwnerOnly(t *testing.T) {
	db := setupInteractionDB(t)
	seedUser(t, db, "owner")
	seedUser(t, db, "intruder")
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	c, _, err := svc.AddComment(ctx, model.ItemTypePost, "p1", "owner", "mine", nil)
	require.NoError(t, err)

	// 非作者删除静默 0 行，计数不变
	deleted, err := svc.DeleteComment(ctx, c.ID, "intruder")
	require.NoError(t, err)
	require.False(t, deleted)

	counts, err := svc.GetCounts(ctx, model.ItemTypePost, "p1")
	require.NoError(t, err)
	require.EqualValues(t, 1, counts.CommentCount)

	deleted, err = svc.DeleteComment(ctx, c.ID, "owner")
	require.NoError(t, err)
	require.True(t, deleted)

	counts, err = svc.GetCounts(ctx, model.ItemTypePost, "p1")
	require.NoError(t, err)
	require.EqualValues(t, 0, counts.CommentCount)
}

func TestUserCommentEnqueuesDispatchEvent(t *testing.T) {
	db := setupInteractionDB(t)
	seedUser(t, db, "u1")
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	c, _, err := svc.AddComment(ctx, model.ItemTypePost, "p1", "u1", "is this trim good?", nil)
	require.NoError(t, err)

	var evs []model.DispatchEvent
	require.NoError(t, db.Find(&evs).Error)
	require.Len(t, evs, 1)
	require.Equal(t, model.DispatchNewComment, evs[0].EventType)
	require.Equal(t, "p1", evs[0].PostID)
	require.NotNil(t, evs[0].CommentID)
	require.Equal(t, c.ID, *evs[0].CommentID)
}

func TestAgentCommentDoesNotEnqueue(t *testing.T) {
	db := setupInteractionDB(t)
	seedUser(t, db, testAgentID)
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	c, _, err := svc.AddComment(ctx, model.ItemTypePost, "p1", testAgentID, "here is the answer", nil)
	require.NoError(t, err)
	require.True(t, c.IsBot)

	var cnt int64
	require.NoError(t, db.Model(&model.DispatchEvent{}).Count(&cnt).Error)
	require.EqualValues(t, 0, cnt)
}

func TestNonPostCommentDoesNotEnqueue(t *testing.T) {
	db := setupInteractionDB(t)
	seedUser(t, db, "u1")
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	_, _, err := svc.AddComment(ctx, model.ItemTypeListing, "l1", "u1", "nice car", nil)
	require.NoError(t, err)

	var cnt int64
	require.NoError(t, db.Model(&model.DispatchEvent{}).Count(&cnt).Error)
	require.EqualValues(t, 0, cnt)
}

func TestListSavesMostRecentFirst(t *testing.T) {
	db := setupInteractionDB(t)
	seedUser(t, db, "u1")
	svc := NewInteractionService(db, testAgentID)
	ctx := context.Background()

	for _, it := range []struct {
		typ model.ItemType
		id  string
	}{
		{model.ItemTypeListing, "l1"},
		{model.ItemTypePost, "p1"},
		{model.ItemTypeEvent, "e1"},
	} {
		_, err := svc.ToggleSave(ctx, it.typ, it.id, "u1")
		require.NoError(t, err)
	}

	list, err := svc.ListSaves(ctx, "u1", 1, 50)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "e1", list[0].ItemID)
	require.Equal(t, "l1", list[2].ItemID)

	// 取消收藏后从列表消失
	_, err = svc.ToggleSave(ctx, model.ItemTypePost, "p1", "u1")
	require.NoError(t, err)
	list, err = svc.ListSaves(ctx, "u1", 1, 50)
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = svc.ListSaves(ctx, "u1", 2, 50)
	require.NoError(t, err)

	_, err = svc.ListSaves(ctx, "", 1, 50)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGetUserStateAnonymous(t *testing.T) {
	db := setupInteractionDB(t)
	svc := NewInteractionService(db, testAgentID)

	st, err := svc.GetUserState(context.Background(), model.ItemTypePost, "p1", "")
	require.NoError(t, err)
	require.False(t, st.Liked)
	require.False(t, st.Saved)
}

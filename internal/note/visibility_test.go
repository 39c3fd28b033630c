package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nostr-feed/internal/nostr"
	"nostr-feed/internal/types"
)

func TestShouldRender(t *testing.T) {
	all := types.Settings{Reposts: true, DirectMessages: true}
	none := types.Settings{}

	tests := []struct {
		kind     int
		settings types.Settings
		want     bool
	}{
		{types.KindTextNote, none, true},
		{types.KindRepost, all, true},
		{types.KindRepost, none, false},
		{types.KindEncryptedDirectMessage, all, true},
		{types.KindEncryptedDirectMessage, none, false},
		{types.KindMetadata, all, false},
		{types.KindReaction, all, false},
		{types.KindEventDeletion, all, false},
		{30023, all, false},
	}
	for _, tt := range tests {
		got := ShouldRender(&types.Event{Kind: tt.kind}, tt.settings)
		assert.Equal(t, tt.want, got, "kind %d settings %+v", tt.kind, tt.settings)
	}
}

func TestGatedKindsProduceNoSlot(t *testing.T) {
	dm := textNote(hexID(2), 100, "secret")
	dm.Kind = types.KindEncryptedDirectMessage
	src, sess := newFixture(t, dm)
	sess.Settings.DirectMessages = false

	surface := &recordingSurface{}
	w := newTestWalker(src, 0)
	w.Walk(sess, surface, Params{ID: dm.ID})
	w.Walk(sess, surface, Params{ID: hexID(99)}) // absent

	assert.Empty(t, surface.views)
	_, ok := sess.Views.Height(dm.ID)
	assert.False(t, ok)
}

func TestResolveAuthor(t *testing.T) {
	delegator, err := nostr.PubKeyFromSecret(delegatorSecret)
	require.NoError(t, err)

	build := func(conditions string) *types.Event {
		token, err := nostr.SignDigest(nostr.DelegationToken(authorKey, conditions), delegatorSecret)
		require.NoError(t, err)
		ev := &types.Event{
			CreatedAt: testNow.Unix(),
			Kind:      types.KindTextNote,
			Tags:      [][]string{{"delegation", delegator, conditions, token}},
			Content:   "delegated",
		}
		require.NoError(t, nostr.Sign(ev, signerSecret))
		return ev
	}

	author, d := ResolveAuthor(build("kind=1"))
	assert.Equal(t, delegator, author)
	assert.Equal(t, types.DelegatedBy, d.State)

	author, d = ResolveAuthor(build("kind=7"))
	assert.Equal(t, authorKey, author)
	assert.Equal(t, types.InvalidDelegation, d.State)
	assert.NotEmpty(t, d.Reason)

	author, d = ResolveAuthor(&types.Event{PubKey: authorKey, Tags: [][]string{{"delegation", "garbage"}}})
	assert.Equal(t, authorKey, author)
	assert.Equal(t, types.InvalidDelegation, d.State)

	author, d = ResolveAuthor(&types.Event{PubKey: authorKey})
	assert.Equal(t, authorKey, author)
	assert.Equal(t, types.NotDelegated, d.State)
}

func TestDelegationBadges(t *testing.T) {
	ev := textNote(hexID(1), 100, "hi", []string{"delegation", "zz", "kind=1", "00"})
	src, sess := newFixture(t, ev)

	v, ok := newTestWalker(src, 0).View(sess, Params{ID: ev.ID})
	require.True(t, ok)
	require.NotEmpty(t, v.Badges)
	assert.Equal(t, "INVALID DELEGATION", v.Badges[0].Label)
	assert.Equal(t, ToneWarning, v.Badges[0].Tone)
	assert.NotEmpty(t, v.Badges[0].Hover)
	// content still shows
	assert.Equal(t, "hi", PlainText(v.Body.Segments))
}

func TestMutedAuthorKeepsSlot(t *testing.T) {
	ev := textNote(hexID(1), 100, "hidden words")
	mute := &types.Event{ID: hexID(50), PubKey: viewerKey, CreatedAt: 10, Kind: types.KindMuteList, Tags: [][]string{{"p", authorKey}}}
	src, sess := newFixture(t, ev, mute)

	surface := &recordingSurface{height: 12}
	newTestWalker(src, 0).Walk(sess, surface, Params{ID: ev.ID})

	require.Len(t, surface.views, 1)
	v := surface.views[0]
	assert.True(t, v.Muted)
	assert.Equal(t, BodyMuted, v.Body.Kind)
	assert.Equal(t, MutedPlaceholder, v.Body.Text)
	assert.Empty(t, v.Actions)
	h, ok := sess.Views.Height(ev.ID)
	assert.True(t, ok)
	assert.Equal(t, 12.0, h)
}

func TestMutedReplyKeepsParentPointer(t *testing.T) {
	parent := &types.Event{ID: hexID(1), PubKey: viewerKey, CreatedAt: 90, Kind: types.KindTextNote, Content: "root", Tags: [][]string{}}
	reply := replyTo(hexID(2), parent.ID, 100)
	mute := &types.Event{ID: hexID(50), PubKey: viewerKey, CreatedAt: 10, Kind: types.KindMuteList, Tags: [][]string{{"p", authorKey}}}
	src, sess := newFixture(t, parent, reply, mute)

	v, ok := newTestWalker(src, 0).View(sess, Params{ID: reply.ID})
	require.True(t, ok)
	assert.True(t, v.Muted)
	assert.Equal(t, parent.ID, v.RepliesTo)
	assert.Equal(t, "replies to #"+shortHex(parent.ID), v.RepliesToLabel)
	assert.Equal(t, BodyMuted, v.Body.Kind)
}

func TestContentWarningGate(t *testing.T) {
	ev := textNote(hexID(1), 100, "spoiler text", []string{"content-warning", "spoilers"})
	src, sess := newFixture(t, ev)
	w := newTestWalker(src, 0)

	surface := &recordingSurface{height: 3}
	w.Walk(sess, surface, Params{ID: ev.ID})
	require.Len(t, surface.views, 1)
	gated := surface.views[0]
	assert.Equal(t, BodyWarning, gated.Body.Kind)
	assert.Equal(t, "Content-Warning: spoilers", gated.Body.Text)
	assert.True(t, gated.Offers(ActionShowPost))
	_, ok := sess.Views.Height(ev.ID)
	require.True(t, ok)

	d := NewDispatcher(nil, nil)
	require.NoError(t, d.Dispatch(sess, ActionShowPost, &gated))
	_, ok = sess.Views.Height(ev.ID)
	assert.False(t, ok, "approval clears the measured height")

	surface = &recordingSurface{height: 9}
	w.Walk(sess, surface, Params{ID: ev.ID})
	shown := surface.views[0]
	assert.Equal(t, BodyContent, shown.Body.Kind)
	assert.Equal(t, "spoiler text", PlainText(shown.Body.Segments))
	assert.False(t, shown.Offers(ActionShowPost))
}

func TestEmptyContentWarningStillGates(t *testing.T) {
	ev := textNote(hexID(1), 100, "x", []string{"content-warning"})
	src, sess := newFixture(t, ev)
	v, ok := newTestWalker(src, 0).View(sess, Params{ID: ev.ID})
	require.True(t, ok)
	assert.Equal(t, BodyWarning, v.Body.Kind)
	assert.Equal(t, "Content-Warning: ", v.Body.Text)
}

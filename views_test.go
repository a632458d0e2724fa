package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderIndexListsRooms(t *testing.T) {
	cfg := &Config{}

	fragment := renderIndex(cfg, []Room{
		{Name: "abc", CreatedAt: time.Now()},
		{Name: "xyz", CreatedAt: time.Now()},
	})

	assert.Contains(t, fragment, `id="main"`)
	assert.Contains(t, fragment, `href="/room/abc"`)
	assert.Contains(t, fragment, `href="/room/xyz"`)
	assert.Contains(t, fragment, `id="create"`)
}

func TestRenderIndexHonorsPrefix(t *testing.T) {
	cfg := &Config{prefix: "/games"}

	fragment := renderIndex(cfg, []Room{{Name: "abc"}})

	assert.Contains(t, fragment, `href="/games/room/abc"`)
}

func TestRenderRoomBeforeReveal(t *testing.T) {
	cfg := &Config{}
	room := &Room{Name: "abc", Admin: "u1"}

	adminView := renderRoom(cfg, room, nil, true, "fr")
	assert.Contains(t, adminView, "Reveal")

	playerView := renderRoom(cfg, room, nil, false, "fr")
	assert.NotContains(t, playerView, "reveal", "the reveal control is admin-only")
	assert.Contains(t, playerView, "Get ready")
}

func TestRenderRoomAfterReveal(t *testing.T) {
	cfg := &Config{}
	room := &Room{Name: "abc", Admin: "u1"}
	power := &Power{
		ID:   "oracle",
		Name: map[string]string{"fr": "L'Oracle", "en": "The Oracle"},
		Desc: map[string]string{"fr": "Posez une question.", "en": "Ask a question."},
	}

	french := renderRoom(cfg, room, power, false, "fr")
	assert.Contains(t, french, "L'Oracle")
	assert.Contains(t, french, "Posez une question.")
	assert.NotContains(t, french, "New game")

	english := renderRoom(cfg, room, power, true, "en")
	assert.Contains(t, english, "The Oracle")
	assert.Contains(t, english, "Ask a question.")
	assert.Contains(t, english, "New game")
}

func TestRenderRoomMarksTPM(t *testing.T) {
	cfg := &Config{}
	room := &Room{Name: "abc", Admin: "u1"}

	plain := &Power{ID: "a", Name: map[string]string{"fr": "A"}, Desc: map[string]string{"fr": "a"}}
	marked := &Power{ID: "b", Name: map[string]string{"fr": "B"}, Desc: map[string]string{"fr": "b"}, TPM: true}

	assert.NotContains(t, renderRoom(cfg, room, plain, false, "fr"), "<span>O</span>")
	assert.Contains(t, renderRoom(cfg, room, marked, false, "fr"), "<span>O</span>")
}

func TestSupportedLocale(t *testing.T) {
	assert.True(t, supportedLocale("fr"))
	assert.True(t, supportedLocale("en"))
	assert.False(t, supportedLocale("de"))
	assert.False(t, supportedLocale(""))
}

// Crazystar
//
// Anyone can open a room; everyone who walks into it gets a secret power
// once the room's creator hits "Reveal". Rooms are anonymous (cookie-only
// identity) and short-lived.
//
// Features:
// - Live views per room and for the landing page: every relevant change on
//   the server pushes a freshly rendered fragment to each open connection
// - Room creator is the admin; only the admin can trigger a reveal
// - Powers drawn independently per player from a localized catalog (fr/en)
// - Visitors identified by cookie (visitor id, set on first contact)
// - Rooms expire a fixed time after creation, connections included
// - In-browser QR button to share a room, backed by go-qrcode

package main

import (
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	visitorCookieName = "crazystar_id"
	localeCookieName  = "crazystar_loc"
)

// Room names: short, letters only. The literal "room" is carved out
// explicitly even though it matches the pattern.
var roomNamePattern = regexp.MustCompile(`^[A-Za-z]{1,10}$`)

func validRoomName(name string) bool {
	return name == "room" || roomNamePattern.MatchString(name)
}

func getOrSetVisitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	u := uuid.New()
	id := hex.EncodeToString(u[:])

	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

func getOrSetLocale(cfg *Config, w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(localeCookieName); err == nil && supportedLocale(c.Value) {
		return c.Value
	}

	http.SetCookie(w, &http.Cookie{
		Name:     localeCookieName,
		Value:    cfg.defaultLocale,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	return cfg.defaultLocale
}

// instruction is the lightweight reply to a mutation request. "alert" tells
// the client to surface Message; an empty body means nothing to do.
type instruction struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// writeAlert surfaces a user-visible inline error. The request still
// completes normally; this is not a protocol-level failure.
func writeAlert(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(instruction{Type: "alert", Message: message})
}

func pageShell(cfg *Config, wsPath string) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	b.WriteString(`<meta charset="UTF-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
	b.WriteString(`<title>crazystar</title>`)
	b.WriteString(getFavicon())
	b.WriteString(`<link rel="stylesheet" href="` + cfg.prefix + `/assets/app.css">`)
	b.WriteString(`<script defer src="` + cfg.prefix + `/assets/app.js"></script>`)
	b.WriteString(`</head>`)
	b.WriteString(`<body data-ws="` + wsPath + `" data-prefix="` + cfg.prefix + `">`)
	b.WriteString(`<main id="main"></main>`)
	b.WriteString(`</body></html>`)

	return b.String()
}

func serveIndexPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		_ = getOrSetVisitorID(w, r)
		_ = getOrSetLocale(cfg, w, r)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(pageShell(cfg, cfg.prefix+"/ws")))
	}
}

func serveRoomPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		name := ps.ByName("name")

		_ = getOrSetVisitorID(w, r)
		_ = getOrSetLocale(cfg, w, r)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(pageShell(cfg, cfg.prefix+"/room/"+name+"/ws")))
	}
}

// serveIndexSession drives one live view of the landing page, re-rendering
// the room list on every wake.
func serveIndexSession(cfg *Config, store *Store, registry *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		visitor := getOrSetVisitorID(w, r)
		if visitor == "" {
			http.Error(w, "unable to assign visitor id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "VIEWS: Upgrade error: %v", err)
			return
		}
		defer conn.Close()

		render := func() (string, error) {
			rooms, err := store.AllRooms()
			if err != nil {
				return "", err
			}

			return renderIndex(cfg, rooms), nil
		}

		liveView(r.Context(), cfg, registry, conn, indexChannel, visitor, render)
	}
}

// serveRoomSession drives one live view of a room. Entering the room is the
// join: an absent visitor is added with an unknown power before the first
// render, and adding them again later is a no-op.
func serveRoomSession(cfg *Config, store *Store, registry *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		name := ps.ByName("name")

		visitor := getOrSetVisitorID(w, r)
		if visitor == "" {
			http.Error(w, "unable to assign visitor id", http.StatusInternalServerError)
			return
		}

		locale := getOrSetLocale(cfg, w, r)

		room, err := store.FindRoom(name)
		if err != nil {
			http.Error(w, "room lookup failed", http.StatusInternalServerError)
			return
		}
		if room == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		if err := joinRoom(store, room, visitor); err != nil {
			http.Error(w, "join failed", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "VIEWS: Upgrade error: %v", err)
			return
		}
		defer conn.Close()

		render := func() (string, error) {
			room, err := store.FindRoom(name)
			if err != nil {
				return "", err
			}
			if room == nil {
				return "", errViewGone
			}

			var power *Power
			if id := room.Players[visitor]; id != unknownPower {
				power, err = store.FindPower(id)
				if err != nil {
					return "", err
				}
			}

			return renderRoom(cfg, room, power, room.Admin == visitor, locale), nil
		}

		liveView(r.Context(), cfg, registry, conn, name, visitor, render)
	}
}

// joinRoom adds a visitor to a room's players with an unknown power.
// Idempotent: a visitor already present is left untouched.
func joinRoom(store *Store, room *Room, visitor string) error {
	if _, ok := room.Players[visitor]; ok {
		return nil
	}

	room.Players[visitor] = unknownPower

	return store.UpdatePlayers(room.Name, room.Players)
}

func serveCreateRoom(cfg *Config, store *Store, registry *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var body struct {
			RoomName string `json:"room_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RoomName == "" {
			w.WriteHeader(http.StatusOK)
			return
		}

		if !validRoomName(body.RoomName) {
			writeAlert(w, "no funny names!!1")
			return
		}

		visitor := getOrSetVisitorID(w, r)

		room := &Room{
			Name:      body.RoomName,
			CreatedAt: time.Now(),
			Admin:     visitor,
			Players:   map[string]string{visitor: unknownPower},
		}

		if err := store.InsertRoom(room); err != nil {
			writeAlert(w, "that room already exists")
			return
		}

		logf(cfg, "GAMES: Room created: %s", room.Name)

		// Wake each landing-page session individually; the snapshot is taken
		// once, so sessions connecting mid-loop catch up on their own initial
		// render.
		for _, subscriber := range registry.Subscribers(indexChannel) {
			registry.Wake(indexChannel, subscriber)
		}

		w.WriteHeader(http.StatusOK)
	}
}

func serveSetLocale(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		locale := ps.ByName("loc")
		if !supportedLocale(locale) {
			writeAlert(w, "unsupported locale")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     localeCookieName,
			Value:    locale,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		})

		w.WriteHeader(http.StatusOK)
	}
}

// serveReveal assigns every player in the room an independently drawn random
// power from the catalog (two players may share one), then wakes the room's
// sessions. The admin-only control is hidden client-side, and the check here
// closes the remaining gap for hand-built requests.
func serveReveal(cfg *Config, store *Store, registry *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		name := ps.ByName("name")

		visitor := ""
		if c, err := r.Cookie(visitorCookieName); err == nil {
			visitor = c.Value
		}

		room, err := store.FindRoom(name)
		if err != nil || room == nil {
			writeAlert(w, "that room is gone")
			return
		}

		if visitor == "" || room.Admin != visitor {
			writeAlert(w, "only the room admin can reveal")
			return
		}

		powers, err := store.AllPowers()
		if err != nil || len(powers) == 0 {
			writeAlert(w, "no powers to hand out")
			return
		}

		assigned := make(map[string]string, len(room.Players))
		for player := range room.Players {
			assigned[player] = powers[rand.Intn(len(powers))].ID
		}

		if err := store.UpdatePlayers(name, assigned); err != nil {
			writeAlert(w, "reveal failed, try again")
			return
		}

		logf(cfg, "GAMES: Powers revealed in %s for %d players", name, len(assigned))

		registry.Publish(name)

		w.WriteHeader(http.StatusOK)
	}
}

// serveRoomQR generates a PNG QR code for the room URL.
func serveRoomQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: QR code (%s) for %s to %s", humanReadableSize(int64(written)), url, realIP(r))
	}
}

// registerGame sets up the game routes:
//   - /                  → landing page with the live room list
//   - /ws                → landing page live view
//   - /create            → create a room
//   - /loc/:loc          → switch locale
//   - /room/:name        → room client
//   - /room/:name/ws     → room live view (joins on connect)
//   - /room/:name/reveal → assign powers (admin only)
//   - /room/:name/qr     → PNG QR code for the room URL
func registerGame(cfg *Config, store *Store, registry *Registry, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/", serveIndexPage(cfg))
	mux.GET(cfg.prefix+"/ws", serveIndexSession(cfg, store, registry))
	mux.POST(cfg.prefix+"/create", serveCreateRoom(cfg, store, registry))
	mux.POST(cfg.prefix+"/loc/:loc", serveSetLocale(cfg))
	mux.GET(cfg.prefix+"/room/:name", serveRoomPage(cfg))
	mux.GET(cfg.prefix+"/room/:name/ws", serveRoomSession(cfg, store, registry))
	mux.POST(cfg.prefix+"/room/:name/reveal", serveReveal(cfg, store, registry))
	mux.GET(cfg.prefix+"/room/:name/qr", serveRoomQR(cfg, errs))
}

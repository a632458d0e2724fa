package main

import (
	"fmt"
	"strings"
)

var supportedLocales = []string{"fr", "en"}

func supportedLocale(loc string) bool {
	for _, candidate := range supportedLocales {
		if loc == candidate {
			return true
		}
	}

	return false
}

// renderIndex builds the landing page fragment: the create form and a join
// link per room, newest room first.
func renderIndex(cfg *Config, rooms []Room) string {
	var b strings.Builder

	b.WriteString(`<main id="main" class="gf10v gc">`)
	b.WriteString(`<div class="gc">`)
	b.WriteString(`<form id="create">`)
	b.WriteString(`<input type="text" name="room_name" placeholder="room name" maxlength="10" required>`)
	b.WriteString(`<button type="submit">Create room</button>`)
	b.WriteString(`</form>`)
	b.WriteString(`<p>Join room:</p>`)

	for _, room := range rooms {
		b.WriteString(fmt.Sprintf(`<a class="button" href="%s/room/%s">%s</a>`, cfg.prefix, room.Name, room.Name))
	}

	b.WriteString(`<p class="loc" data-loc="fr">fr</p>`)
	b.WriteString(`<p class="loc" data-loc="en">en</p>`)
	b.WriteString(`</div>`)
	b.WriteString(`</main>`)

	return b.String()
}

// renderRoom builds one player's view of a room. Before the reveal the power
// is nil and the player either waits or, as admin, gets the reveal control.
// Only the admin ever sees the reveal/new-game buttons.
func renderRoom(cfg *Config, room *Room, power *Power, admin bool, loc string) string {
	var b strings.Builder

	b.WriteString(`<main id="main" class="gc">`)

	if power == nil {
		if admin {
			b.WriteString(fmt.Sprintf(`<button class="reveal" data-room="%s">Reveal</button>`, room.Name))
		} else {
			b.WriteString(`<p>Get ready...</p>`)
		}
	} else {
		b.WriteString(fmt.Sprintf(`<h2 class="gt l">%s</h2>`, power.Name[loc]))
		b.WriteString(fmt.Sprintf(`<p>%s`, power.Desc[loc]))
		if power.TPM {
			b.WriteString(`<span>O</span>`)
		}
		b.WriteString(`</p>`)
		if admin {
			b.WriteString(fmt.Sprintf(`<button class="reveal" data-room="%s">New game</button>`, room.Name))
		}
	}

	b.WriteString(`</main>`)

	return b.String()
}

package main

import (
	"context"
	"time"
)

// reapRooms periodically sweeps expired rooms until the context ends.
func reapRooms(ctx context.Context, cfg *Config, store *Store, registry *Registry) {
	ticker := time.NewTicker(cfg.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepRooms(cfg, store, registry, time.Now())
		}
	}
}

// sweepRooms removes every room whose age, measured from its fixed creation
// time, has reached the retention threshold, then drops the room's channel so
// any live sessions observe a close rather than an indefinite hang. Each
// room is handled independently: one failed removal never aborts the rest.
func sweepRooms(cfg *Config, store *Store, registry *Registry, now time.Time) {
	rooms, err := store.AllRooms()
	if err != nil {
		logf(cfg, "REAP: Room scan failed: %v", err)

		return
	}

	for _, room := range rooms {
		if now.Sub(room.CreatedAt) < cfg.roomRetention {
			continue
		}

		if err := store.DeleteRoom(room.Name); err != nil {
			logf(cfg, "REAP: Failed to remove room %q: %v", room.Name, err)

			continue
		}

		registry.DropChannel(room.Name)

		logf(cfg, "REAP: Removed room %q (created %s)", room.Name, room.CreatedAt.Format(logDate))
	}
}

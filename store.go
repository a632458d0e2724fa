package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// unknownPower marks a player whose power has not been revealed yet.
const unknownPower = "unknown"

// Room is one game lobby. Players maps visitor ids to power ids, with
// unknownPower standing in until the admin reveals.
type Room struct {
	Name      string
	CreatedAt time.Time
	Admin     string
	Players   map[string]string
}

// Power is a static catalog entry. Name and Desc are keyed by locale.
type Power struct {
	ID   string            `json:"id"`
	Name map[string]string `json:"name"`
	Desc map[string]string `json:"desc"`
	TPM  bool              `json:"tpm"`
}

type Store struct {
	db *sql.DB
}

func openStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Serialize writers; sqlite holds a single write lock anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// createSchema is safe to call on every start.
func (s *Store) createSchema() error {
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
    name TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL,
    admin TEXT NOT NULL,
    players TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS powers (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    descr TEXT NOT NULL,
    tpm INTEGER NOT NULL DEFAULT 0
);
`

func (s *Store) InsertRoom(room *Room) error {
	players, err := json.Marshal(room.Players)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`INSERT INTO rooms (name, created_at, admin, players) VALUES (?, ?, ?, ?)`,
		room.Name, room.CreatedAt.Unix(), room.Admin, string(players))

	return err
}

// FindRoom returns nil without an error when no room has this name.
func (s *Store) FindRoom(name string) (*Room, error) {
	row := s.db.QueryRow(`SELECT name, created_at, admin, players FROM rooms WHERE name = ?`, name)

	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return room, nil
}

// AllRooms returns every room, newest first.
func (s *Store) AllRooms() ([]Room, error) {
	rows, err := s.db.Query(`SELECT name, created_at, admin, players FROM rooms ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}

	return rooms, rows.Err()
}

func (s *Store) UpdatePlayers(name string, players map[string]string) error {
	data, err := json.Marshal(players)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`UPDATE rooms SET players = ? WHERE name = ?`, string(data), name)

	return err
}

func (s *Store) DeleteRoom(name string) error {
	_, err := s.db.Exec(`DELETE FROM rooms WHERE name = ?`, name)

	return err
}

// FindPower returns nil without an error when the id is not in the catalog.
func (s *Store) FindPower(id string) (*Power, error) {
	row := s.db.QueryRow(`SELECT id, name, descr, tpm FROM powers WHERE id = ?`, id)

	power, err := scanPower(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return power, nil
}

func (s *Store) AllPowers() ([]Power, error) {
	rows, err := s.db.Query(`SELECT id, name, descr, tpm FROM powers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var powers []Power
	for rows.Next() {
		power, err := scanPower(rows)
		if err != nil {
			return nil, err
		}
		powers = append(powers, *power)
	}

	return powers, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(row scanner) (*Room, error) {
	var (
		room    Room
		created int64
		players string
	)

	if err := row.Scan(&room.Name, &created, &room.Admin, &players); err != nil {
		return nil, err
	}

	room.CreatedAt = time.Unix(created, 0)

	if err := json.Unmarshal([]byte(players), &room.Players); err != nil {
		return nil, err
	}

	return &room, nil
}

func scanPower(row scanner) (*Power, error) {
	var (
		power      Power
		name, desc string
		tpm        int
	)

	if err := row.Scan(&power.ID, &name, &desc, &tpm); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(name), &power.Name); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(desc), &power.Desc); err != nil {
		return nil, err
	}
	power.TPM = tpm != 0

	return &power, nil
}

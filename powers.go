package main

import (
	_ "embed"
	"encoding/json"
)

//go:embed powers.json
var powersJSON []byte

// seedPowers loads the embedded catalog into an empty powers table and
// returns the number of rows written. A non-empty table is left alone, so
// operators can edit the catalog in place.
func (s *Store) seedPowers() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM powers`).Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	var catalog []Power
	if err := json.Unmarshal(powersJSON, &catalog); err != nil {
		return 0, err
	}

	for _, power := range catalog {
		name, err := json.Marshal(power.Name)
		if err != nil {
			return 0, err
		}
		desc, err := json.Marshal(power.Desc)
		if err != nil {
			return 0, err
		}

		tpm := 0
		if power.TPM {
			tpm = 1
		}

		_, err = s.db.Exec(`INSERT INTO powers (id, name, descr, tpm) VALUES (?, ?, ?, ?)`,
			power.ID, string(name), string(desc), tpm)
		if err != nil {
			return 0, err
		}
	}

	return len(catalog), nil
}

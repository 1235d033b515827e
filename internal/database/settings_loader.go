package database

// ScyllaSettingsLoader leest de winkelbrede instellingen uit de
// settings-tabel. Wordt door config.SettingsStore met een TTL gecachet.
type ScyllaSettingsLoader struct{}

func (ScyllaSettingsLoader) LoadSettings() (map[string]string, error) {
	session, err := GetShopSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT key, value FROM settings").Iter()

	out := make(map[string]string)
	var key, value string
	for iter.Scan(&key, &value) {
		out[key] = value
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	return out, nil
}

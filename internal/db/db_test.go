package db

import "testing"

func TestOpen_AppliesMigrations(t *testing.T) {
	d, err := Open("file:dbmigrate?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	// The initial migration creates the fleet tables.
	for _, table := range []string{"users", "drone_models", "stations", "drones", "drone_station", "balances"} {
		var name string
		err := d.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}

	// Applied versions are recorded so later opens skip them.
	var applied int
	if err := d.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil || applied == 0 {
		t.Fatalf("schema_migrations: %v count=%d", err, applied)
	}
}

func TestRollbackLast_DropsSchema(t *testing.T) {
	d, err := Open("file:dbrollback?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if err := RollbackLast(d); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	var name string
	err = d.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'drones'`).Scan(&name)
	if err == nil {
		t.Fatalf("drones table still present after rollback")
	}

	// Nothing left to roll back is not an error.
	if err := RollbackLast(d); err != nil {
		t.Fatalf("rollback empty: %v", err)
	}
}

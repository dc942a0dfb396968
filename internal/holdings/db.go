package holdings

import (
	"database/sql"

	"github.com/lib/pq"
)

// http://www.postgresql.org/docs/9.4/static/errcodes-appendix.html
const errorUniqueViolation pq.ErrorCode = "23505"

// Save upserts h into the holdings database keyed by the archival file
// name, creating the stream row on first sight.
func Save(db *sql.DB, h Holding, key string) error {
	r, err := saveHolding(db, h, key)

	switch {
	case err != nil:
		return err
	case r == 1:
		return nil
	}

	if err := saveStream(db, h); err != nil {
		return err
	}

	_, err = saveHolding(db, h, key)

	return err
}

func saveHolding(db *sql.DB, h Holding, key string) (int64, error) {
	r, err := db.Exec(`INSERT INTO cube.holdings (network, station, channel, location, start_time, sample_rate, numsamples, key)
	SELECT network, station, channel, location, $5, $6, $7, $8
	FROM cube.stream
	WHERE network = $1 AND station = $2 AND channel = $3 AND location = $4
	ON CONFLICT (key) DO UPDATE SET
	start_time = EXCLUDED.start_time, sample_rate = EXCLUDED.sample_rate, numsamples = EXCLUDED.numsamples`,
		h.Network, h.Station, h.Channel, h.Location, h.Start, h.SampleRate, h.NumSamples, key)
	if err != nil {
		return 0, err
	}

	return r.RowsAffected()
}

func saveStream(db *sql.DB, h Holding) error {
	_, err := db.Exec(`INSERT INTO cube.stream (network, station, channel, location) VALUES($1, $2, $3, $4)`,
		h.Network, h.Station, h.Channel, h.Location)
	if err != nil {
		if u, ok := err.(*pq.Error); ok && u.Code == errorUniqueViolation {
			return nil
		}
		return err
	}

	return nil
}

// Delete removes the holding stored under key.
func Delete(db *sql.DB, key string) error {
	_, err := db.Exec(`DELETE FROM cube.holdings WHERE key = $1`, key)
	return err
}

// Package seed holds resolved SEED stream identifiers and archival file
// naming.
package seed

import (
	"fmt"
	"strings"
	"time"
)

// Identity identifies one stream of data in the archive.
type Identity struct {
	Network, Station, Location, Channel string
}

func (id Identity) String() string {
	return strings.Join([]string{id.Network, id.Station, id.Location, id.Channel}, ".")
}

// Name returns the archival file name for a segment of stream id starting
// at start, e.g. AV.GAIA.04.DDF.2019.206.03.  Times are archival UTC.
func Name(id Identity, start time.Time) string {
	t := start.UTC()
	return fmt.Sprintf("%s.%d.%03d.%02d", id, t.Year(), t.YearDay(), t.Hour())
}

// RenameTemplate returns the strftime style naming template passed to the
// external rename tool for stream id.
func RenameTemplate(id Identity) string {
	return fmt.Sprintf("%s.%%Y.%%j.%%H", id)
}

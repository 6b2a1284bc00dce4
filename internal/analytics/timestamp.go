package analytics

import "time"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// epoch is where unparseable timestamps sort.
var epoch = time.Unix(0, 0).UTC()

// parseTimestamp reads the ISO-8601 forms the ingestion pipeline has been
// seen to write. Anything else is treated as the Unix epoch.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return epoch
}

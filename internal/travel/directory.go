package travel

import (
	"context"
	"sort"
)

// DefaultDestinationID is the hotel provider id used for unknown
// destinations (Bangkok).
const DefaultDestinationID = "-3414440"

// DestinationDirectory maps a destination name to the hotel provider's
// destination id. Matching is exact; ok is false for unknown names.
type DestinationDirectory interface {
	DestinationID(ctx context.Context, name string) (id string, ok bool, err error)
	Destinations(ctx context.Context) ([]DestinationEntry, error)
}

// StaticDirectory is an in-memory DestinationDirectory.
type StaticDirectory map[string]string

// DefaultDestinations holds the pre-configured Thai destinations.
var DefaultDestinations = StaticDirectory{
	"Bangkok":              "-3414440",
	"Bangkok, Thailand":    "-3414440",
	"Chiang Mai":           "-3237187",
	"Chiang Mai, Thailand": "-3237187",
	"Phuket":               "-3242976",
	"Phuket, Thailand":     "-3242976",
	"Pattaya":              "-3714993",
	"Pattaya, Thailand":    "-3714993",
}

func (d StaticDirectory) DestinationID(_ context.Context, name string) (string, bool, error) {
	id, ok := d[name]
	return id, ok, nil
}

// Destinations lists the directory sorted by name.
func (d StaticDirectory) Destinations(_ context.Context) ([]DestinationEntry, error) {
	out := make([]DestinationEntry, 0, len(d))
	for name, id := range d {
		out = append(out, DestinationEntry{Name: name, ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AngelaMos | 2026
// table.go

package venues

// DefaultPopularity is the weight assigned to venues not in the table.
const DefaultPopularity = 5

// Metadata holds the locally curated facts about a known venue. None of
// this comes from the upstream provider.
type Metadata struct {
	Capacity int
	Type     string
	Address  string
	Parking  string
	Tips     string
	Teams    []string
}

type tableEntry struct {
	fragment   string
	popularity int
	meta       *Metadata
}

// popularityTable maps lowercase venue-name fragments onto popularity
// weights and optional metadata. Matching is case-insensitive substring;
// order matters: the first matching fragment wins.
var popularityTable = []tableEntry{
	{
		fragment:   "moda center",
		popularity: 10,
		meta: &Metadata{
			Capacity: 19393,
			Type:     "arena",
			Address:  "1 Center Ct, Portland, OR 97227",
			Parking:  "Multiple lots and garages available",
			Tips:     "Arrive early for Trail Blazers games - traffic can be heavy",
			Teams:    []string{"Portland Trail Blazers"},
		},
	},
	{
		fragment:   "providence park",
		popularity: 9,
		meta: &Metadata{
			Capacity: 25218,
			Type:     "stadium",
			Address:  "1844 SW Morrison St, Portland, OR 97205",
			Parking:  "Limited - public transit recommended",
			Tips:     "Take MAX Light Rail to avoid parking hassles",
			Teams:    []string{"Portland Timbers", "Portland Thorns FC"},
		},
	},
	{
		fragment:   "crystal ballroom",
		popularity: 8,
		meta: &Metadata{
			Capacity: 1500,
			Type:     "concert hall",
			Address:  "1332 W Burnside St, Portland, OR 97209",
			Parking:  "Street parking only",
			Tips:     "Cash bar only - no cards accepted",
		},
	},
	{fragment: "veterans memorial", popularity: 8},
	{fragment: "arlene schnitzer", popularity: 8},
	{fragment: "roseland theater", popularity: 7},
	{fragment: "revolution hall", popularity: 7},
	{fragment: "keller auditorium", popularity: 7},
	{fragment: "doug fir", popularity: 6},
}

package devconfig

// shipTypeNames holds the named AIS ship and cargo type codes. Codes in a
// decade sharing a category (for example 60-69 passenger) fall back to
// shipTypeCategories.
var shipTypeNames = map[uint8]string{
	0:  "Not available",
	30: "Fishing",
	31: "Towing",
	32: "Towing, large",
	33: "Dredging or underwater ops",
	34: "Diving ops",
	35: "Military ops",
	36: "Sailing",
	37: "Pleasure craft",
	50: "Pilot vessel",
	51: "Search and rescue vessel",
	52: "Tug",
	53: "Port tender",
	54: "Anti-pollution equipment",
	55: "Law enforcement",
	58: "Medical transport",
	59: "Noncombatant ship",
}

var shipTypeCategories = map[uint8]string{
	2: "Wing in ground",
	4: "High speed craft",
	6: "Passenger",
	7: "Cargo",
	8: "Tanker",
	9: "Other type",
}

// ShipTypeName returns a human readable name for an AIS ship and cargo type.
func ShipTypeName(code uint8) string {
	if name, ok := shipTypeNames[code]; ok {
		return name
	}
	if code >= 100 {
		return "Unknown"
	}
	if name, ok := shipTypeCategories[code/10]; ok {
		return name
	}
	return "Reserved"
}
